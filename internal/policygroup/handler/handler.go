package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"custodia/internal/policygroup"
	dErrors "custodia/pkg/domainerrors"
	"custodia/pkg/httputil"
	"custodia/pkg/requestcontext"
)

// Service defines the interface for policy group operations.
type Service interface {
	Create(ctx context.Context, subjectID string, in policygroup.CreateInput) (policygroup.PolicyGroup, error)
	Get(ctx context.Context, subjectID, groupID string) (policygroup.PolicyGroup, error)
	List(ctx context.Context, subjectID string) ([]policygroup.PolicyGroup, error)
	Update(ctx context.Context, subjectID, groupID string, in policygroup.CreateInput) (policygroup.PolicyGroup, error)
	Delete(ctx context.Context, subjectID, groupID string) error
	Assign(ctx context.Context, subjectID, groupID string, assignments []policygroup.DataAssignment) error
	AssignAllUnprotected(ctx context.Context, subjectID, groupID string, assignments []policygroup.DataAssignment) (int, error)
	ListAssignments(ctx context.Context, subjectID, groupID string) ([]policygroup.DataAssignment, error)
}

// Handler wires policy group endpoints to the service. Every route requires a
// subject token; groups are only ever visible to the subject that owns them.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a policy group handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts policy group endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/policy-groups", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Route("/{groupID}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Put("/", h.HandleUpdate)
			r.Delete("/", h.HandleDelete)
			r.Get("/assignments", h.HandleListAssignments)
			r.Post("/assign", h.HandleAssign)
			r.Post("/assign-all-unprotected", h.HandleAssignAllUnprotected)
		})
	})
}

// subject extracts the authenticated subject, writing 401 when absent.
func (h *Handler) subject(w http.ResponseWriter, r *http.Request) (string, bool) {
	subjectID := requestcontext.SubjectID(r.Context())
	if subjectID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "subject authentication required"))
		return "", false
	}
	return subjectID, true
}

// HandleCreate handles POST /policy-groups requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}

	req, ok := httputil.Decode[PolicyGroupRequest](w, r, h.logger)
	if !ok {
		return
	}

	group, err := h.service.Create(ctx, subjectID, req.ToInput())
	if err != nil {
		h.logger.ErrorContext(ctx, "policy group create failed",
			"request_id", requestcontext.RequestID(ctx),
			"subject_id", subjectID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "policy group created",
		"request_id", requestcontext.RequestID(ctx),
		"subject_id", subjectID,
		"group_id", group.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromGroup(group))
}

// HandleList handles GET /policy-groups requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}

	groups, err := h.service.List(ctx, subjectID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromGroups(groups))
}

// HandleGet handles GET /policy-groups/{groupID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}

	group, err := h.service.Get(ctx, subjectID, chi.URLParam(r, "groupID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromGroup(group))
}

// HandleUpdate handles PUT /policy-groups/{groupID} requests.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}

	req, ok := httputil.Decode[PolicyGroupRequest](w, r, h.logger)
	if !ok {
		return
	}

	group, err := h.service.Update(ctx, subjectID, chi.URLParam(r, "groupID"), req.ToInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "policy group updated",
		"request_id", requestcontext.RequestID(ctx),
		"subject_id", subjectID,
		"group_id", group.ID,
		"version", group.Version,
	)
	httputil.WriteJSON(w, http.StatusOK, FromGroup(group))
}

// HandleDelete handles DELETE /policy-groups/{groupID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}

	groupID := chi.URLParam(r, "groupID")
	if err := h.service.Delete(ctx, subjectID, groupID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "policy group deleted",
		"request_id", requestcontext.RequestID(ctx),
		"subject_id", subjectID,
		"group_id", groupID,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleAssign handles POST /policy-groups/{groupID}/assign requests.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}

	req, ok := httputil.Decode[AssignRequest](w, r, h.logger)
	if !ok {
		return
	}

	groupID := chi.URLParam(r, "groupID")
	if err := h.service.Assign(ctx, subjectID, groupID, req.ToDomain(groupID)); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "data items assigned",
		"request_id", requestcontext.RequestID(ctx),
		"subject_id", subjectID,
		"group_id", groupID,
		"count", len(req.Assignments),
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleAssignAllUnprotected handles POST /policy-groups/{groupID}/assign-all-unprotected.
func (h *Handler) HandleAssignAllUnprotected(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}

	req, ok := httputil.Decode[AssignRequest](w, r, h.logger)
	if !ok {
		return
	}

	groupID := chi.URLParam(r, "groupID")
	assigned, err := h.service.AssignAllUnprotected(ctx, subjectID, groupID, req.ToDomain(groupID))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "unprotected data items assigned",
		"request_id", requestcontext.RequestID(ctx),
		"subject_id", subjectID,
		"group_id", groupID,
		"assigned", assigned,
		"skipped", len(req.Assignments)-assigned,
	)
	httputil.WriteJSON(w, http.StatusOK, AssignAllResponse{
		Assigned: assigned,
		Skipped:  len(req.Assignments) - assigned,
	})
}

// HandleListAssignments handles GET /policy-groups/{groupID}/assignments.
func (h *Handler) HandleListAssignments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}

	assignments, err := h.service.ListAssignments(ctx, subjectID, chi.URLParam(r, "groupID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAssignments(assignments))
}
