package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/service"
	dErrors "github.com/CBIIT/ccdi-cpi-etl/pkg/domain-errors"
	"github.com/CBIIT/ccdi-cpi-etl/pkg/platform/httputil"
	"github.com/CBIIT/ccdi-cpi-etl/pkg/requestcontext"
)

// Service defines the linkage operations exposed over HTTP.
type Service interface {
	Run(ctx context.Context) (*service.RunReport, error)
	Preview(ctx context.Context) (*service.Preview, error)
	Aliases(ctx context.Context, key string) (*service.AliasLookup, error)
}

// Handler wires linkage endpoints to the service.
type Handler struct {
	service    Service
	logger     *slog.Logger
	runTimeout time.Duration
}

// New constructs a linkage handler. runTimeout bounds a run triggered over
// HTTP; zero means no bound beyond the request context.
func New(service Service, logger *slog.Logger, runTimeout time.Duration) *Handler {
	return &Handler{service: service, logger: logger, runTimeout: runTimeout}
}

// Register mounts the read-only endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/participants/{key}/aliases", h.HandleAliases)
}

// RegisterAdmin mounts endpoints that start or preview runs.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/v1/runs", h.HandleRun)
	r.Get("/v1/runs/preview", h.HandlePreview)
}

// HandleRun handles POST /v1/runs. The run completes before the response.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if h.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.runTimeout)
		defer cancel()
	}

	report, err := h.service.Run(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "linkage run failed",
			"request_id", requestID,
			"elapsed", time.Since(requestcontext.Now(ctx)),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "linkage run triggered",
		"request_id", requestID,
		"run_id", report.RunID,
		"updated", report.Applied.Updated,
		"unchanged", report.Unchanged,
		"elapsed", time.Since(requestcontext.Now(ctx)),
	)
	httputil.WriteJSON(w, http.StatusOK, report)
}

// HandlePreview handles GET /v1/runs/preview.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	preview, err := h.service.Preview(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "linkage preview failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPreview(preview))
}

// HandleAliases handles GET /v1/participants/{key}/aliases.
func (h *Handler) HandleAliases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "participant key is not valid path encoding"))
		return
	}

	lookup, err := h.service.Aliases(ctx, key)
	if err != nil {
		h.logger.DebugContext(ctx, "alias lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"key", key,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, lookup)
}
