package handler

import (
	"time"

	"custodia/internal/decision"
)

// CheckAccessResponse is the transport shape of an access decision.
type CheckAccessResponse struct {
	Result        string                `json:"result"`
	Reason        string                `json:"reason"`
	PolicyGroupID *string               `json:"policyGroupId"`
	PolicyVersion int64                 `json:"policyVersion"`
	Obligations   []decision.Obligation `json:"obligations"`
	LogEntryID    string                `json:"logEntryId"`
	DegradedAudit bool                  `json:"degradedAudit,omitempty"`
	EvaluatedAt   time.Time             `json:"evaluatedAt"`
}

// FromResult converts the service result. A null policyGroupId signals
// default-deny: no group covered the item.
func FromResult(result *decision.EvaluateResult) CheckAccessResponse {
	resp := CheckAccessResponse{
		Result:        string(result.Decision.Result),
		Reason:        result.Decision.Reason,
		PolicyVersion: result.Decision.PolicyVersion,
		Obligations:   result.Decision.Obligations,
		LogEntryID:    result.LogEntryID,
		DegradedAudit: result.DegradedAudit,
		EvaluatedAt:   result.EvaluatedAt,
	}
	if resp.Obligations == nil {
		resp.Obligations = []decision.Obligation{}
	}
	if result.Decision.PolicyGroupID != "" {
		id := result.Decision.PolicyGroupID
		resp.PolicyGroupID = &id
	}
	return resp
}
