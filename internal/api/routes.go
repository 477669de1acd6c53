package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Reports   *ReportsHandler
	Campaigns *CampaignHandler
	Meetings  *MeetingHandler
}

// NewRouter builds the chi router with the shared middleware stack.
func NewRouter(h Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/reports", func(r chi.Router) {
			r.Post("/upload", h.Reports.Upload)
			r.Post("/upload/file", h.Reports.UploadFile)
			r.Post("/errors/export", h.Reports.ExportErrors)
		})
		r.Post("/send-email", h.Campaigns.SendEmail)
		r.Get("/campaigns/{id}/status", h.Campaigns.Status)
		r.Get("/meetings/{id}/recipients", h.Meetings.Recipients)
	})

	return r
}
