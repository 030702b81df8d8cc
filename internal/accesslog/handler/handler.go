package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"custodia/internal/accesslog"
	dErrors "custodia/pkg/domainerrors"
	"custodia/pkg/httputil"
	"custodia/pkg/requestcontext"
)

// Service defines the interface for access log queries.
type Service interface {
	ListByController(ctx context.Context, controllerID string) ([]accesslog.AccessLogEntry, error)
	ListBySubject(ctx context.Context, subjectID string) ([]accesslog.AccessLogEntry, error)
	Get(ctx context.Context, entryID string) (accesslog.AccessLogEntry, error)
}

// Handler exposes the access log read side. Controllers see their own
// decision history; subjects see every decision made over their data.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an access log handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts access log endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/access/log", h.HandleList)
	r.Get("/access/log/{entryID}", h.HandleGet)
}

// HandleList handles GET /access/log requests. The caller's token decides the
// view: a controller token lists its own history, a subject token lists the
// subject's.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		entries []accesslog.AccessLogEntry
		err     error
	)
	switch {
	case requestcontext.ControllerID(ctx) != "":
		entries, err = h.service.ListByController(ctx, requestcontext.ControllerID(ctx))
	case requestcontext.SubjectID(ctx) != "":
		entries, err = h.service.ListBySubject(ctx, requestcontext.SubjectID(ctx))
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "access log listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromEntries(entries))
}

// HandleGet handles GET /access/log/{entryID} requests. Entries are only
// visible to the controller or subject they concern.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entry, err := h.service.Get(ctx, chi.URLParam(r, "entryID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if entry.ControllerID != requestcontext.ControllerID(ctx) &&
		entry.SubjectID != requestcontext.SubjectID(ctx) {
		// Hide existence from third parties.
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "access log entry not found"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromEntry(entry))
}
