package api

import (
	"context"
	"net/http"
	"route-generation-service/internal/api/handlers"
	"route-generation-service/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Generator    handlers.RouteGenerator
	Parts        ports.RoutePartRepository
	Searches     ports.SearchResultRepository
	DefaultStart string

	// Ready reports whether the store is reachable. Optional.
	Ready func(ctx context.Context) error
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)

	searchHandler := &handlers.SearchHandler{
		Generator:    deps.Generator,
		Searches:     deps.Searches,
		DefaultStart: deps.DefaultStart,
	}
	routeHandler := &handlers.RouteHandler{Parts: deps.Parts}
	healthHandler := &handlers.HealthHandler{Check: deps.Ready}

	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/searches", func(r chi.Router) {
		r.Get("/", searchHandler.Create)
		r.Post("/", searchHandler.Create)
		r.Get("/{id}", searchHandler.Get)
	})
	r.Get("/routes/{id}", routeHandler.Get)

	return r
}
