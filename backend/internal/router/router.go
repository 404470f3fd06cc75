package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/itchan-dev/anonboard/backend/internal/setup"
	mw "github.com/itchan-dev/anonboard/shared/middleware"
	"github.com/itchan-dev/anonboard/shared/middleware/metrics"
)

// New creates the router with all the routes.
// IMPORTANT! a limiter is shared by every route it guards, so creating a thread and a reply draw from one budget
func New(deps *setup.Dependencies) http.Handler {
	cfg := deps.Config.Public
	h := deps.Handler

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	// an empty origin list allows every origin
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CorsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	r.Use(mw.SecurityHeadersWithCSP(cfg.SecureHeaders, mw.APIContentSecurityPolicy))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", metrics.Handler())

	create := mw.RateLimitByIP(deps.Limiters.Create)
	report := mw.RateLimitByIP(deps.Limiters.Report)
	remove := mw.RateLimitByIP(deps.Limiters.Delete)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
		r.Use(mw.MaxBodySize(cfg.MaxBodyBytes))

		r.Get("/threads/{board}", h.ListThreads)
		r.With(create).Post("/threads/{board}", h.CreateThread)
		r.With(report).Put("/threads/{board}", h.ReportThread)
		r.With(remove).Delete("/threads/{board}", h.DeleteThread)

		r.Get("/replies/{board}", h.GetThread)
		r.With(create).Post("/replies/{board}", h.CreateReply)
		r.With(report).Put("/replies/{board}", h.ReportReply)
		r.With(remove).Delete("/replies/{board}", h.DeleteReply)
	})

	return r
}
