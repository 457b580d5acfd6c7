package repo

import (
	"context"
	"fmt"
)

// SectionRepositoryPG covers the single section mutation this service
// performs: swapping the current image after an approval.
type SectionRepositoryPG struct {
	db DB
}

// NewSectionRepository constructs a new section repository instance.
func NewSectionRepository(db DB) *SectionRepositoryPG {
	return &SectionRepositoryPG{db: db}
}

// UpdateCurrentImage points the section at a newly approved asset. Two
// racing approvals resolve last-writer-wins; there is no lock here.
func (r *SectionRepositoryPG) UpdateCurrentImage(ctx context.Context, sectionID, imageURL string) error {
	_, err := r.db.Exec(ctx, `
UPDATE sections
SET current_image_url = $2,
	updated_at = now()
WHERE id = $1;
`, sectionID, imageURL)
	if err != nil {
		return fmt.Errorf("update section current image: %w", err)
	}
	return nil
}
