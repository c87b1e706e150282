package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/user/philosophy-walker/internal/delivery/http/handler"
	"github.com/user/philosophy-walker/internal/delivery/http/middleware"
	"github.com/user/philosophy-walker/pkg/metrics"
)

func New(h *handler.Handler, m *metrics.Metrics, gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(chimw.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Length", "Content-Type"},
	}).Handler)

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Get("/graph", h.HandleGetGraph)
		r.Get("/graph.dot", h.HandleGetGraphDOT)
		r.Get("/traversals", h.HandleGetTraversal)
		r.With(chimw.Timeout(5*time.Minute)).Post("/traverse", h.HandleTraverse)
		r.With(chimw.Timeout(10*time.Second)).Post("/traversals", h.HandleSubmitTraversal)
	})

	return r
}
