package decision

import (
	"strings"

	"custodia/internal/policygroup"
	dErrors "custodia/pkg/domainerrors"
)

// Result is the outcome of evaluating an access request.
type Result string

const (
	ResultPermit Result = "PERMIT"
	ResultDeny   Result = "DENY"
)

// Reasons attached to decisions. Human-readable and stable, so the audit
// trail stays interpretable across releases.
const (
	ReasonNoCoveringPolicy   = "no policy covers this data item"
	ReasonActionProhibited   = "action is explicitly prohibited"
	ReasonActionNotPermitted = "action is not permitted by the policy group"
	ReasonPolicyExpired      = "policy group permissions have expired"
	ReasonPurposeMismatch    = "declared purpose does not match the policy constraint"
	ReasonAllowed            = "action permitted by all covering policy groups"
)

// Obligation is a side effect the permitted controller must carry out.
// Modeled as a tagged type plus details so new obligation kinds can be added
// without breaking consumers; unknown types pass through untouched.
type Obligation struct {
	Type    string            `json:"type"`
	Details map[string]string `json:"details,omitempty"`
}

// ObligationNotify instructs the controller to notify the data subject.
const ObligationNotify = "notify"

// minPurposeLength rejects throwaway purposes; a declared purpose is part of
// the audit record and must carry meaning.
const minPurposeLength = 10

// AccessRequest is a controller's request to act on a subject's data item.
// Exactly one of DataProperty, (TableName, RecordID), or DataDescription
// identifies the item.
type AccessRequest struct {
	ControllerID    string
	SubjectTaxID    string
	Action          policygroup.Action
	Purpose         string
	DataSource      string
	DataProperty    string
	TableName       string
	RecordID        string
	DataDescription string
}

// Validate rejects malformed requests before evaluation. A request that
// fails validation is never evaluated, so absence of input can never turn
// into an implicit grant.
func (r AccessRequest) Validate() error {
	if strings.TrimSpace(r.ControllerID) == "" {
		return dErrors.New(dErrors.CodeValidation, "controllerId is required")
	}
	if strings.TrimSpace(r.SubjectTaxID) == "" {
		return dErrors.New(dErrors.CodeValidation, "subjectTaxId is required")
	}
	if !policygroup.KnownAction(r.Action) {
		return dErrors.New(dErrors.CodeValidation, "action must be one of read, use, share, aggregate, modify")
	}
	if len(strings.TrimSpace(r.Purpose)) < minPurposeLength {
		return dErrors.New(dErrors.CodeValidation, "purpose is required and must be descriptive")
	}
	if strings.TrimSpace(r.DataSource) == "" {
		return dErrors.New(dErrors.CodeValidation, "dataSource is required")
	}
	if _, err := r.Item(); err != nil {
		return err
	}
	return nil
}

// Item resolves the requested data item. A bare description is treated as a
// property-name hint: it resolves against property assignments and, failing
// that, the request falls through to default-deny.
func (r AccessRequest) Item() (policygroup.DataItem, error) {
	hasProperty := strings.TrimSpace(r.DataProperty) != ""
	hasRecord := strings.TrimSpace(r.TableName) != "" && strings.TrimSpace(r.RecordID) != ""
	hasDescription := strings.TrimSpace(r.DataDescription) != ""

	switch {
	case hasProperty:
		return policygroup.DataItem{Property: r.DataProperty}, nil
	case hasRecord:
		return policygroup.DataItem{TableName: r.TableName, RecordID: r.RecordID}, nil
	case hasDescription:
		return policygroup.DataItem{Property: r.DataDescription}, nil
	default:
		return policygroup.DataItem{}, dErrors.New(dErrors.CodeValidation,
			"request must identify a data item: dataProperty, recordId+tableName, or dataDescription")
	}
}

// AccessDecision is the evaluator's answer. PolicyGroupID is empty when no
// group covered the item (default-deny); otherwise it cites the deciding
// group and the revision in force at decision time.
type AccessDecision struct {
	Result        Result
	Reason        string
	PolicyGroupID string
	PolicyVersion int64
	Obligations   []Obligation
}

// Permitted reports whether the decision grants access.
func (d AccessDecision) Permitted() bool { return d.Result == ResultPermit }
