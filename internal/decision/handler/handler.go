package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"custodia/internal/decision"
	dErrors "custodia/pkg/domainerrors"
	"custodia/pkg/httputil"
	"custodia/pkg/requestcontext"
)

// Service defines the interface for access decision operations.
type Service interface {
	Evaluate(ctx context.Context, req decision.AccessRequest) (*decision.EvaluateResult, error)
}

// Handler wires the access check endpoint to the decision service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a decision handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts decision endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/access/check", h.HandleCheckAccess)
}

// HandleCheckAccess handles POST /access/check requests.
func (h *Handler) HandleCheckAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	controllerID := requestcontext.ControllerID(ctx)
	if controllerID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.Decode[CheckAccessRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.service.Evaluate(ctx, req.ToDomain(controllerID))
	if err != nil {
		h.logger.ErrorContext(ctx, "access check failed",
			"request_id", requestID,
			"controller_id", controllerID,
			"action", req.Action,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "access check evaluated",
		"request_id", requestID,
		"controller_id", controllerID,
		"action", req.Action,
		"result", result.Decision.Result,
		"log_entry_id", result.LogEntryID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}
