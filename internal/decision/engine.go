package decision

import (
	"strings"
	"time"

	"custodia/internal/policygroup"
)

// Verdict is one policy group's answer for a request. Evaluate produces one
// verdict per covering group and combines them; keeping the per-group result
// explicit makes the combination rule auditable and independently testable.
type Verdict struct {
	Result        Result
	Reason        string
	PolicyGroupID string
	PolicyVersion int64
	Notify        bool
}

// EvaluateGroup applies one policy group's rules to an action/purpose pair.
// Pure domain logic: no I/O, no side effects. Rule order (fail-fast):
//  1. Explicit prohibition - always wins over a permission for the same action
//  2. Permission present and true
//  3. Expiration constraint
//  4. Purpose constraint (case-insensitive substring or equality)
func EvaluateGroup(group policygroup.PolicyGroup, action policygroup.Action, purpose string, at time.Time) Verdict {
	verdict := Verdict{
		PolicyGroupID: group.ID,
		PolicyVersion: group.Version,
		Notify:        group.Constraints.RequiresNotification,
	}

	if group.Prohibitions[action] {
		verdict.Result = ResultDeny
		verdict.Reason = ReasonActionProhibited
		return verdict
	}

	if !group.Permissions[action] {
		verdict.Result = ResultDeny
		verdict.Reason = ReasonActionNotPermitted
		return verdict
	}

	if exp := group.Constraints.Expiration; exp != nil && exp.Before(at) {
		verdict.Result = ResultDeny
		verdict.Reason = ReasonPolicyExpired
		return verdict
	}

	if want := strings.TrimSpace(group.Constraints.Purpose); want != "" {
		if !strings.Contains(strings.ToLower(purpose), strings.ToLower(want)) {
			verdict.Result = ResultDeny
			verdict.Reason = ReasonPurposeMismatch
			return verdict
		}
	}

	verdict.Result = ResultPermit
	verdict.Reason = ReasonAllowed
	return verdict
}

// Combine reduces per-group verdicts with deny-overrides: the first denying
// group vetoes the request and is cited in the decision, so one subject
// intent can never leak access another has explicitly blocked. Only when
// every covering group permits does the overall decision permit, citing the
// first permitting group.
func Combine(verdicts []Verdict) AccessDecision {
	if len(verdicts) == 0 {
		return AccessDecision{
			Result: ResultDeny,
			Reason: ReasonNoCoveringPolicy,
		}
	}

	for _, v := range verdicts {
		if v.Result == ResultDeny {
			return AccessDecision{
				Result:        ResultDeny,
				Reason:        v.Reason,
				PolicyGroupID: v.PolicyGroupID,
				PolicyVersion: v.PolicyVersion,
			}
		}
	}

	winner := verdicts[0]
	decision := AccessDecision{
		Result:        ResultPermit,
		Reason:        winner.Reason,
		PolicyGroupID: winner.PolicyGroupID,
		PolicyVersion: winner.PolicyVersion,
	}
	for _, v := range verdicts {
		if v.Notify {
			decision.Obligations = append(decision.Obligations, Obligation{
				Type:    ObligationNotify,
				Details: map[string]string{"policyGroupId": v.PolicyGroupID},
			})
			break
		}
	}
	return decision
}

// Evaluate runs the full default-deny evaluation of a request against the
// covering groups' snapshots at the given instant.
func Evaluate(groups []policygroup.PolicyGroup, req AccessRequest, at time.Time) AccessDecision {
	verdicts := make([]Verdict, 0, len(groups))
	for _, group := range groups {
		verdicts = append(verdicts, EvaluateGroup(group, req.Action, req.Purpose, at))
	}
	decision := Combine(verdicts)

	// The notify obligation names the subject to be notified.
	for i := range decision.Obligations {
		decision.Obligations[i].Details["subjectId"] = req.SubjectTaxID
	}
	return decision
}
