// Package ops serves the operational endpoints every service exposes:
// liveness, the JSON metrics contract, and the Prometheus scrape surface.
package ops

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"librisync/pkg/httputil"
)

// CacheStats reports cache key counts. The platform redis client satisfies
// it; the cache doubles as the liveness probe for the services.
type CacheStats interface {
	CachedKeys(ctx context.Context) (int64, error)
}

// Handler serves /health and /metrics for one service.
type Handler struct {
	service string
	stats   CacheStats
	logger  *slog.Logger
}

// New constructs an ops handler. service is the name reported in the metrics
// body, e.g. "books-service".
func New(service string, stats CacheStats, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		stats:   stats,
		logger:  logger,
	}
}

// Register mounts the operational endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/metrics", h.HandleMetrics)
	r.Handle("/metrics/prometheus", promhttp.Handler())
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// metricsResponse is the JSON metrics contract shared by all services.
type metricsResponse struct {
	Service    string `json:"service"`
	CachedKeys int64  `json:"cached_keys"`
}

// HandleMetrics handles GET /metrics.
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	keys, err := h.stats.CachedKeys(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "cache stats unavailable", "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, metricsResponse{
		Service:    h.service,
		CachedKeys: keys,
	})
}
