package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"venueadmin/internal/http/handlers"
	"venueadmin/internal/infra"
	"venueadmin/internal/middleware"
)

// RouterOptions carries the cross-cutting knobs the router needs beyond the
// handler container itself.
type RouterOptions struct {
	Logger          infra.Logger
	AllowedOrigins  []string
	RateLimitPerMin int

	// AdminToken guards /api when non-empty; health stays open either way.
	AdminToken string
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
	)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(opts.AllowedOrigins))
	}
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		if opts.AdminToken != "" {
			r.Use(middleware.AdminAuth(opts.AdminToken))
		}
		r.Post("/images/generate", app.ImagesGenerate)
		r.Patch("/images/{id}/status", app.ImageUpdateStatus)
		r.Patch("/images/{id}/global-reference", app.ImageSetGlobalReference)
		r.Get("/sections/{id}/images", app.SectionImages)
		r.Get("/sections/{id}/images/archive", app.SectionImagesArchive)
		r.Get("/models", app.Models)
		r.Get("/loras", app.LoRACatalog)
	})

	return r
}
