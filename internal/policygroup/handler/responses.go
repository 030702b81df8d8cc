package handler

import (
	"time"

	"custodia/internal/policygroup"
)

// PolicyGroupResponse is the transport shape of a policy group.
type PolicyGroupResponse struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	Description    string                `json:"description,omitempty"`
	Permissions    map[string]bool       `json:"permissions"`
	Prohibitions   map[string]bool       `json:"prohibitions"`
	Constraints    ConstraintsRequest    `json:"constraints"`
	AIRestrictions AIRestrictionsRequest `json:"aiRestrictions"`
	Version        int64                 `json:"version"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// FromGroup converts a domain group for the wire.
func FromGroup(g policygroup.PolicyGroup) PolicyGroupResponse {
	return PolicyGroupResponse{
		ID:           g.ID,
		Name:         g.Name,
		Description:  g.Description,
		Permissions:  fromActionMap(g.Permissions),
		Prohibitions: fromActionMap(g.Prohibitions),
		Constraints: ConstraintsRequest{
			Purpose:              g.Constraints.Purpose,
			Expiration:           g.Constraints.Expiration,
			RequiresNotification: g.Constraints.RequiresNotification,
		},
		AIRestrictions: AIRestrictionsRequest{
			AllowTraining: g.AIRestrictions.AllowTraining,
			Algorithm:     g.AIRestrictions.Algorithm,
		},
		Version:   g.Version,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// FromGroups converts a list of domain groups for the wire.
func FromGroups(groups []policygroup.PolicyGroup) []PolicyGroupResponse {
	out := make([]PolicyGroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, FromGroup(g))
	}
	return out
}

func fromActionMap(m map[policygroup.Action]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

// AssignmentResponse is the transport shape of one data assignment.
type AssignmentResponse struct {
	Source    string `json:"source"`
	Property  string `json:"property,omitempty"`
	TableName string `json:"tableName,omitempty"`
	RecordID  string `json:"recordId,omitempty"`
}

// FromAssignments converts domain assignments for the wire.
func FromAssignments(assignments []policygroup.DataAssignment) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, AssignmentResponse{
			Source:    a.Source,
			Property:  a.Item.Property,
			TableName: a.Item.TableName,
			RecordID:  a.Item.RecordID,
		})
	}
	return out
}

// AssignAllResponse reports how many of the requested items were actually
// bound; items already covered by another group are skipped.
type AssignAllResponse struct {
	Assigned int `json:"assigned"`
	Skipped  int `json:"skipped"`
}
