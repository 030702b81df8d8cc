package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/accesslog"
	"custodia/internal/decision"
	"custodia/internal/ledger"
	"custodia/internal/policygroup"
	"custodia/pkg/testutil"
)

func newTestRouter(t *testing.T) (http.Handler, *accesslog.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := accesslog.NewService(accesslog.NewInMemoryStore(), ledger.NewMemoryLedger(), logger, 4)

	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return r, svc
}

func recordEntry(t *testing.T, svc *accesslog.Service, controllerID, subjectID string) accesslog.AccessLogEntry {
	t.Helper()
	entry, _, err := svc.Record(context.Background(), decision.AccessRequest{
		ControllerID: controllerID,
		SubjectTaxID: subjectID,
		Action:       policygroup.ActionRead,
		Purpose:      "customer relationship management",
		DataSource:   "crm",
		DataProperty: "email",
	}, decision.AccessDecision{
		Result:        decision.ResultPermit,
		Reason:        decision.ReasonAllowed,
		PolicyGroupID: "g1",
		PolicyVersion: 1,
	})
	require.NoError(t, err)
	return *entry
}

func TestHandleListAsController(t *testing.T) {
	router, svc := newTestRouter(t)
	recordEntry(t, svc, "987654", "12345678901")
	recordEntry(t, svc, "111222", "12345678901")

	req := testutil.NewRequest(t, http.MethodGet, "/access/log")
	req = testutil.WithController(req, "987654")

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(t, rr)
	resp := testutil.UnmarshalResponse[[]EntryResponse](t, rr)
	require.Len(t, *resp, 1, "controllers see only their own history")
	assert.Equal(t, "987654", (*resp)[0].ControllerID)
	assert.True(t, (*resp)[0].Anchored)
}

func TestHandleListAsSubject(t *testing.T) {
	router, svc := newTestRouter(t)
	recordEntry(t, svc, "987654", "12345678901")
	recordEntry(t, svc, "111222", "12345678901")
	recordEntry(t, svc, "987654", "99988877766")

	req := testutil.NewRequest(t, http.MethodGet, "/access/log")
	req = testutil.WithSubject(req, "12345678901")

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(t, rr)
	resp := testutil.UnmarshalResponse[[]EntryResponse](t, rr)
	assert.Len(t, *resp, 2, "subjects see every decision over their data")
}

func TestHandleListUnauthenticated(t *testing.T) {
	router, _ := newTestRouter(t)

	req := testutil.NewRequest(t, http.MethodGet, "/access/log")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestHandleGetHidesForeignEntries(t *testing.T) {
	router, svc := newTestRouter(t)
	entry := recordEntry(t, svc, "987654", "12345678901")

	// The controller that made the request can read it.
	req := testutil.NewRequest(t, http.MethodGet, "/access/log/"+entry.ID)
	req = testutil.WithController(req, "987654")
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatusOK(t, rr)

	// The subject concerned can read it.
	req = testutil.NewRequest(t, http.MethodGet, "/access/log/"+entry.ID)
	req = testutil.WithSubject(req, "12345678901")
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatusOK(t, rr)

	// Anyone else gets not-found, not forbidden.
	req = testutil.NewRequest(t, http.MethodGet, "/access/log/"+entry.ID)
	req = testutil.WithController(req, "555555")
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}
