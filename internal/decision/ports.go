package decision

import (
	"context"

	"custodia/internal/policygroup"
)

// PolicyResolver supplies consistent snapshots of the policy groups covering
// a data item. Implemented by the policygroup service.
type PolicyResolver interface {
	ResolveCovering(ctx context.Context, subjectID, source string, item policygroup.DataItem) ([]policygroup.PolicyGroup, error)
}

// Recorder writes the decision to the tamper-evident access log. degraded is
// true when the entry was persisted without a ledger anchor; err is fatal
// only when local persistence itself failed. Implemented by the accesslog
// adapter.
type Recorder interface {
	Record(ctx context.Context, req AccessRequest, dec AccessDecision) (entryID string, degraded bool, err error)
}

// Notifier delivers notify obligations to the subject-notification pipeline.
// Failures degrade gracefully; they never block a decision.
type Notifier interface {
	NotifySubject(ctx context.Context, subjectID, controllerID, purpose string) error
}
