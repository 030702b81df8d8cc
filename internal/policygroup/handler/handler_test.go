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
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"custodia/internal/policygroup"
	"custodia/internal/policygroup/handler/mocks"
	dErrors "custodia/pkg/domainerrors"
	"custodia/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/policygroup-mocks.go -package=mocks Service
type PolicyGroupHandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *PolicyGroupHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestPolicyGroupHandlerSuite(t *testing.T) {
	suite.Run(t, new(PolicyGroupHandlerSuite))
}

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(mockService, logger).Register(r)
	return r, mockService
}

func (s *PolicyGroupHandlerSuite) TestHandleCreate() {
	router, mockService := newTestRouter(s.T())

	mockService.EXPECT().Create(gomock.Any(), "12345678901", policygroup.CreateInput{
		Name:        "health data",
		Permissions: map[policygroup.Action]bool{policygroup.ActionRead: true},
	}).Return(policygroup.PolicyGroup{
		ID:          "g1",
		SubjectID:   "12345678901",
		Name:        "health data",
		Permissions: map[policygroup.Action]bool{policygroup.ActionRead: true},
		Version:     1,
	}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/policy-groups", PolicyGroupRequest{
		Name:        "health data",
		Permissions: map[string]bool{"read": true},
	})
	req = testutil.WithSubject(req, "12345678901")

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[PolicyGroupResponse](s.T(), rr)
	assert.Equal(s.T(), "g1", resp.ID)
	assert.Equal(s.T(), int64(1), resp.Version)
	assert.True(s.T(), resp.Permissions["read"])
}

func (s *PolicyGroupHandlerSuite) TestHandleCreateRequiresSubject() {
	router, _ := newTestRouter(s.T())

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/policy-groups", PolicyGroupRequest{Name: "x"})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
}

func (s *PolicyGroupHandlerSuite) TestHandleGetNotFound() {
	router, mockService := newTestRouter(s.T())

	mockService.EXPECT().Get(gomock.Any(), "12345678901", "missing").
		Return(policygroup.PolicyGroup{}, dErrors.New(dErrors.CodeNotFound, "policy group not found"))

	req := testutil.NewRequest(s.T(), http.MethodGet, "/policy-groups/missing")
	req = testutil.WithSubject(req, "12345678901")

	rr := testutil.DoRequest(router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *PolicyGroupHandlerSuite) TestHandleUpdate() {
	router, mockService := newTestRouter(s.T())

	mockService.EXPECT().Update(gomock.Any(), "12345678901", "g1", gomock.Any()).
		Return(policygroup.PolicyGroup{ID: "g1", Name: "renamed", Version: 2}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/policy-groups/g1", PolicyGroupRequest{Name: "renamed"})
	req = testutil.WithSubject(req, "12345678901")

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[PolicyGroupResponse](s.T(), rr)
	assert.Equal(s.T(), int64(2), resp.Version)
}

func (s *PolicyGroupHandlerSuite) TestHandleDelete() {
	router, mockService := newTestRouter(s.T())

	mockService.EXPECT().Delete(gomock.Any(), "12345678901", "g1").Return(nil)

	req := testutil.NewRequest(s.T(), http.MethodDelete, "/policy-groups/g1")
	req = testutil.WithSubject(req, "12345678901")

	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
}

func (s *PolicyGroupHandlerSuite) TestHandleAssign() {
	router, mockService := newTestRouter(s.T())

	mockService.EXPECT().Assign(gomock.Any(), "12345678901", "g1", []policygroup.DataAssignment{
		{
			PolicyGroupID: "g1",
			Source:        "crm",
			Item:          policygroup.DataItem{Property: "email"},
		},
	}).Return(nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/policy-groups/g1/assign", AssignRequest{
		Assignments: []AssignmentItemRequest{{Source: "crm", Property: "email"}},
	})
	req = testutil.WithSubject(req, "12345678901")

	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
}

func (s *PolicyGroupHandlerSuite) TestHandleAssignAllUnprotected() {
	router, mockService := newTestRouter(s.T())

	mockService.EXPECT().AssignAllUnprotected(gomock.Any(), "12345678901", "g1", gomock.Len(3)).
		Return(2, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/policy-groups/g1/assign-all-unprotected", AssignRequest{
		Assignments: []AssignmentItemRequest{
			{Source: "crm", Property: "email"},
			{Source: "crm", Property: "phone"},
			{Source: "billing", Property: "iban"},
		},
	})
	req = testutil.WithSubject(req, "12345678901")

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[AssignAllResponse](s.T(), rr)
	assert.Equal(s.T(), 2, resp.Assigned)
	assert.Equal(s.T(), 1, resp.Skipped)
}

func (s *PolicyGroupHandlerSuite) TestHandleListAssignments() {
	router, mockService := newTestRouter(s.T())

	mockService.EXPECT().ListAssignments(gomock.Any(), "12345678901", "g1").
		Return([]policygroup.DataAssignment{
			{PolicyGroupID: "g1", Source: "crm", Item: policygroup.DataItem{Property: "email"}},
			{PolicyGroupID: "g1", Source: "shop", Item: policygroup.DataItem{TableName: "orders", RecordID: "42"}},
		}, nil)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/policy-groups/g1/assignments")
	req = testutil.WithSubject(req, "12345678901")

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[[]AssignmentResponse](s.T(), rr)
	require.Len(s.T(), *resp, 2)
	assert.Equal(s.T(), "email", (*resp)[0].Property)
	assert.Equal(s.T(), "orders", (*resp)[1].TableName)
}
