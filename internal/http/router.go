package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pledge/internal/platform/metrics"
	"pledge/internal/platform/middleware"
	"pledge/internal/pledge/handler"
)

// HealthCheck probes one backing service.
type HealthCheck func(ctx context.Context) error

// NewRouter wires the public endpoints plus metrics and health. Business
// logic stays in the services; this layer only stacks middleware.
func NewRouter(h *handler.Handler, logger *slog.Logger, m *metrics.Metrics, checks map[string]HealthCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))
	r.Use(middleware.Timeout(30 * time.Second))

	h.Register(r)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthz(checks))

	return r
}

func healthz(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		result := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				result["status"] = "degraded"
				result[name] = err.Error()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(result)
	}
}
