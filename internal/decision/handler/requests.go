package handler

import (
	"custodia/internal/decision"
	"custodia/internal/policygroup"
)

// CheckAccessRequest is the transport shape of an access check. The item is
// identified by exactly one of dataProperty, recordId+tableName, or
// dataDescription; validation happens in the domain, not here.
type CheckAccessRequest struct {
	SubjectTaxID    string `json:"subjectTaxId"`
	Action          string `json:"action"`
	Purpose         string `json:"purpose"`
	DataSource      string `json:"dataSource"`
	DataProperty    string `json:"dataProperty,omitempty"`
	RecordID        string `json:"recordId,omitempty"`
	TableName       string `json:"tableName,omitempty"`
	DataDescription string `json:"dataDescription,omitempty"`
}

// ToDomain builds the domain request for the authenticated controller.
func (r CheckAccessRequest) ToDomain(controllerID string) decision.AccessRequest {
	return decision.AccessRequest{
		ControllerID:    controllerID,
		SubjectTaxID:    r.SubjectTaxID,
		Action:          policygroup.Action(r.Action),
		Purpose:         r.Purpose,
		DataSource:      r.DataSource,
		DataProperty:    r.DataProperty,
		RecordID:        r.RecordID,
		TableName:       r.TableName,
		DataDescription: r.DataDescription,
	}
}
