package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"venueadmin/internal/domain"
)

// DB is the subset of pgxpool.Pool the repositories use, kept narrow so
// handlers can stub it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const imageColumns = `id, section_id, prompt_id, image_url, model_name, model_provider,
status, generation_settings, comparison_notes, approved_at, rejected_at, created_at, is_global_reference`

// ImageRepositoryPG implements the generated-image store on PostgreSQL.
type ImageRepositoryPG struct {
	db DB
}

// NewImageRepository constructs a new image repository instance.
func NewImageRepository(db DB) *ImageRepositoryPG {
	return &ImageRepositoryPG{db: db}
}

// Insert writes one generation record. Status is forced to pending whatever
// the caller passed; the settings blob is stored verbatim, never validated.
func (r *ImageRepositoryPG) Insert(ctx context.Context, img *domain.GeneratedImage) error {
	img.Status = domain.ImageStatusPending
	_, err := r.db.Exec(ctx, `
INSERT INTO generated_images
	(id, section_id, prompt_id, image_url, model_name, model_provider, status, generation_settings, created_at, is_global_reference)
VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7, $8, false);
`, img.ID, img.SectionID, img.PromptID, img.ImageURL, img.ModelName, img.ModelProvider, []byte(img.GenerationSettings), img.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert generated image: %w", err)
	}
	return nil
}

// GetByID returns one record.
func (r *ImageRepositoryPG) GetByID(ctx context.Context, id string) (*domain.GeneratedImage, error) {
	row := r.db.QueryRow(ctx, `
SELECT `+imageColumns+`
FROM generated_images
WHERE id = $1;
`, id)
	return scanImage(row)
}

// ListBySection returns a section's records, newest first.
func (r *ImageRepositoryPG) ListBySection(ctx context.Context, sectionID string) ([]domain.GeneratedImage, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+imageColumns+`
FROM generated_images
WHERE section_id = $1
ORDER BY created_at DESC;
`, sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []domain.GeneratedImage
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, *img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return images, nil
}

// UpdateStatus moves a record through the review lifecycle. Approving sets
// approved_at and clears rejected_at, rejecting does the inverse; moving
// back to pending leaves both timestamps untouched.
func (r *ImageRepositoryPG) UpdateStatus(ctx context.Context, id string, status domain.ImageStatus, notes *string) (*domain.GeneratedImage, error) {
	row := r.db.QueryRow(ctx, `
UPDATE generated_images
SET status = $2,
	comparison_notes = $3,
	approved_at = CASE WHEN $2 = 'approved' THEN now() WHEN $2 = 'rejected' THEN NULL ELSE approved_at END,
	rejected_at = CASE WHEN $2 = 'rejected' THEN now() WHEN $2 = 'approved' THEN NULL ELSE rejected_at END
WHERE id = $1
RETURNING `+imageColumns+`;
`, id, string(status), notes)
	return scanImage(row)
}

// SetGlobalReference pins or unpins a record as a cross-section reference.
func (r *ImageRepositoryPG) SetGlobalReference(ctx context.Context, id string, pinned bool) (*domain.GeneratedImage, error) {
	row := r.db.QueryRow(ctx, `
UPDATE generated_images
SET is_global_reference = $2
WHERE id = $1
RETURNING `+imageColumns+`;
`, id, pinned)
	return scanImage(row)
}

func scanImage(row pgx.Row) (*domain.GeneratedImage, error) {
	var img domain.GeneratedImage
	var settings []byte
	err := row.Scan(
		&img.ID, &img.SectionID, &img.PromptID, &img.ImageURL, &img.ModelName, &img.ModelProvider,
		&img.Status, &settings, &img.ComparisonNotes, &img.ApprovedAt, &img.RejectedAt, &img.CreatedAt,
		&img.IsGlobalReference,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	img.GenerationSettings = settings
	return &img, nil
}
