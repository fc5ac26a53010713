package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/pdfchat/internal/api/handlers"
	"github.com/nikhilbhutani/pdfchat/internal/api/middleware"
)

// Deps are the constructed services the router exposes. cmd/api builds them
// against Postgres, Redis and S3; tests build them in memory.
type Deps struct {
	Authenticate func(http.Handler) http.Handler
	RateLimiter  *middleware.RateLimiter
	CORSOrigins  []string
	Health       *handlers.HealthHandler
	Documents    *handlers.DocumentHandler
	Uploads      *handlers.UploadHandler
	Messages     *handlers.MessageHandler
	Accounts     *handlers.AccountHandler
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(d.CORSOrigins))
	if d.RateLimiter != nil {
		r.Use(d.RateLimiter.Limit)
	}

	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(d.Authenticate)

		r.Post("/auth/callback", d.Accounts.Callback)
		r.Get("/plan", d.Accounts.Plan)

		r.Route("/uploads", func(r chi.Router) {
			r.Post("/validate", d.Uploads.Validate)
			r.Post("/credential", d.Uploads.Credential)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", d.Documents.Register)
			r.Get("/", d.Documents.List)
			r.Get("/{id}", d.Documents.Get)
			r.Delete("/{id}", d.Documents.Delete)
			r.Get("/{id}/status", d.Documents.Status)
			r.Get("/{id}/download", d.Documents.Download)
			r.Get("/{id}/messages", d.Messages.List)
			r.Post("/{id}/messages", d.Messages.Ask)
		})
	})

	return r
}
