package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"custodia/internal/accesslog"
	"custodia/internal/verifier"
	dErrors "custodia/pkg/domainerrors"
	"custodia/pkg/httputil"
	"custodia/pkg/requestcontext"
)

// Verifier defines the interface for audit verification operations.
type Verifier interface {
	VerifyOne(ctx context.Context, entry accesslog.AccessLogEntry) verifier.VerificationResult
	VerifyBatch(ctx context.Context, entries []accesslog.AccessLogEntry) verifier.BatchReport
}

// EntrySource loads the log entries to verify.
type EntrySource interface {
	Get(ctx context.Context, entryID string) (accesslog.AccessLogEntry, error)
	ListByController(ctx context.Context, controllerID string) ([]accesslog.AccessLogEntry, error)
	ListBySubject(ctx context.Context, subjectID string) ([]accesslog.AccessLogEntry, error)
}

// Handler exposes ledger cross-verification. Verification is read-only and
// restricted to entries the caller is party to.
type Handler struct {
	verifier Verifier
	entries  EntrySource
	logger   *slog.Logger
}

// New constructs a verifier handler with its dependencies.
func New(v Verifier, entries EntrySource, logger *slog.Logger) *Handler {
	return &Handler{
		verifier: v,
		entries:  entries,
		logger:   logger,
	}
}

// Register mounts audit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/audit/verify", h.HandleVerifyBatch)
	r.Post("/audit/verify/{entryID}", h.HandleVerifyOne)
}

// visible reports whether the caller is a party to the entry.
func visible(ctx context.Context, entry accesslog.AccessLogEntry) bool {
	if id := requestcontext.ControllerID(ctx); id != "" && entry.ControllerID == id {
		return true
	}
	if id := requestcontext.SubjectID(ctx); id != "" && entry.SubjectID == id {
		return true
	}
	return false
}

// HandleVerifyOne handles POST /audit/verify/{entryID} requests.
func (h *Handler) HandleVerifyOne(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entryID := chi.URLParam(r, "entryID")

	entry, err := h.entries.Get(ctx, entryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !visible(ctx, entry) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "access log entry not found"))
		return
	}

	result := h.verifier.VerifyOne(ctx, entry)

	h.logger.InfoContext(ctx, "audit verification completed",
		"request_id", requestcontext.RequestID(ctx),
		"entry_id", entryID,
		"verified", result.Verified,
		"mismatches", len(result.Mismatches),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleVerifyBatch handles POST /audit/verify requests. With entryIds the
// named entries are verified; with an empty body the caller's entire log is.
func (h *Handler) HandleVerifyBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[VerifyBatchRequest](w, r, h.logger)
	if !ok {
		return
	}

	entries, err := h.collect(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	report := h.verifier.VerifyBatch(ctx, entries)

	h.logger.InfoContext(ctx, "audit batch verification completed",
		"request_id", requestcontext.RequestID(ctx),
		"total", report.Total,
		"verified", report.Verified,
		"failed", report.Failed,
	)
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) collect(ctx context.Context, req VerifyBatchRequest) ([]accesslog.AccessLogEntry, error) {
	if len(req.EntryIDs) > 0 {
		entries := make([]accesslog.AccessLogEntry, 0, len(req.EntryIDs))
		for _, id := range req.EntryIDs {
			entry, err := h.entries.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			if !visible(ctx, entry) {
				return nil, dErrors.New(dErrors.CodeNotFound, "access log entry not found")
			}
			entries = append(entries, entry)
		}
		return entries, nil
	}

	if id := requestcontext.ControllerID(ctx); id != "" {
		return h.entries.ListByController(ctx, id)
	}
	if id := requestcontext.SubjectID(ctx); id != "" {
		return h.entries.ListBySubject(ctx, id)
	}
	return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
}
