package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	catalog := deps.Sessions.Catalog()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", handleSwaggerUI())
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	r.Get("/api/experiences", handleListExperiences(catalog))

	// Viewer routes, {slug} resolved by experienceMiddleware.
	r.Route("/api/{slug}", func(r chi.Router) {
		r.Use(experienceMiddleware(catalog))
		r.Post("/join", handleJoin(logger, deps.Store))

		r.Group(func(r chi.Router) {
			r.Use(viewerMiddleware(deps.Store, deps.Sessions))
			r.Get("/state", handleState())
			r.Post("/events", handleDispatch(deps.Metrics))
			r.Get("/stream", handleStream(deps.Broker, deps.Metrics))
			r.Get("/ws", handleSocket(logger, deps.Broker, deps.Metrics))
			r.Get("/theme", handleGetTheme(logger, deps.Store))
			r.Put("/theme", handlePutTheme(logger, deps.Store))
		})
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
