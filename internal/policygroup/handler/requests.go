package handler

import (
	"time"

	"custodia/internal/policygroup"
)

// ConstraintsRequest is the transport shape of policy constraints.
type ConstraintsRequest struct {
	Purpose              string     `json:"purpose,omitempty"`
	Expiration           *time.Time `json:"expiration,omitempty"`
	RequiresNotification bool       `json:"requiresNotification,omitempty"`
}

// AIRestrictionsRequest is the transport shape of AI processing restrictions.
type AIRestrictionsRequest struct {
	AllowTraining bool   `json:"allowTraining"`
	Algorithm     string `json:"algorithm,omitempty"`
}

// PolicyGroupRequest carries the caller-editable fields for create and update.
type PolicyGroupRequest struct {
	Name           string                `json:"name"`
	Description    string                `json:"description,omitempty"`
	Permissions    map[string]bool       `json:"permissions,omitempty"`
	Prohibitions   map[string]bool       `json:"prohibitions,omitempty"`
	Constraints    ConstraintsRequest    `json:"constraints,omitempty"`
	AIRestrictions AIRestrictionsRequest `json:"aiRestrictions,omitempty"`
}

// ToInput converts the transport request into service input. Unknown actions
// pass through; the service rejects them with a validation error.
func (r PolicyGroupRequest) ToInput() policygroup.CreateInput {
	return policygroup.CreateInput{
		Name:         r.Name,
		Description:  r.Description,
		Permissions:  toActionMap(r.Permissions),
		Prohibitions: toActionMap(r.Prohibitions),
		Constraints: policygroup.Constraints{
			Purpose:              r.Constraints.Purpose,
			Expiration:           r.Constraints.Expiration,
			RequiresNotification: r.Constraints.RequiresNotification,
		},
		AIRestrictions: policygroup.AIRestrictions{
			AllowTraining: r.AIRestrictions.AllowTraining,
			Algorithm:     r.AIRestrictions.Algorithm,
		},
	}
}

func toActionMap(m map[string]bool) map[policygroup.Action]bool {
	if m == nil {
		return nil
	}
	out := make(map[policygroup.Action]bool, len(m))
	for k, v := range m {
		out[policygroup.Action(k)] = v
	}
	return out
}

// AssignmentItemRequest identifies one data item to bind to a group.
type AssignmentItemRequest struct {
	Source    string `json:"source"`
	Property  string `json:"property,omitempty"`
	TableName string `json:"tableName,omitempty"`
	RecordID  string `json:"recordId,omitempty"`
}

// AssignRequest is the body of both assign endpoints.
type AssignRequest struct {
	Assignments []AssignmentItemRequest `json:"assignments"`
}

// ToDomain converts the transport assignments for the target group.
func (r AssignRequest) ToDomain(groupID string) []policygroup.DataAssignment {
	out := make([]policygroup.DataAssignment, 0, len(r.Assignments))
	for _, a := range r.Assignments {
		out = append(out, policygroup.DataAssignment{
			PolicyGroupID: groupID,
			Source:        a.Source,
			Item: policygroup.DataItem{
				Property:  a.Property,
				TableName: a.TableName,
				RecordID:  a.RecordID,
			},
		})
	}
	return out
}
