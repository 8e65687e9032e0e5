package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CBIIT/ccdi-cpi-etl/pkg/platform/httputil"
	"github.com/CBIIT/ccdi-cpi-etl/pkg/platform/middleware/admin"
	"github.com/CBIIT/ccdi-cpi-etl/pkg/platform/middleware/request"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// RouterConfig collects what NewRouter mounts.
type RouterConfig struct {
	AdminToken string
	Gatherer   prometheus.Gatherer
	Checks     map[string]HealthCheck
	Logger     *slog.Logger
}

// NewRouter builds the full HTTP surface: health, metrics, alias lookups and
// the admin-only run endpoints.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	r := chi.NewRouter()
	r.Use(request.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthz(cfg.Checks))
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	h.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(cfg.AdminToken, cfg.Logger))
		h.RegisterAdmin(r)
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthz(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
