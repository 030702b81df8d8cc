package verifier

import "time"

// Mismatch reports one field whose off-chain value diverged from the ledger.
// Reporting per field lets an operator see exactly what was altered instead
// of a bare boolean.
type Mismatch struct {
	Field   string `json:"field"`
	Stored  string `json:"stored"`
	OnChain string `json:"onChain"`
}

// Verification error strings. ErrNoAnchor marks an entry that was never
// anchored and therefore cannot be verified - deliberately distinct from a
// verified-false-due-to-tamper result.
const (
	ErrNoAnchor = "no blockchain anchor"
)

// VerificationResult is the outcome of cross-checking one log entry against
// the ledger. Verified is true iff the entry has an anchor, the ledger read
// succeeded, and every compared field matched.
type VerificationResult struct {
	EntryID    string     `json:"entryId"`
	Verified   bool       `json:"verified"`
	Mismatches []Mismatch `json:"mismatches"`
	Error      string     `json:"error,omitempty"`
	VerifiedAt time.Time  `json:"verifiedAt"`
}

// Tampered reports whether verification found field divergence (as opposed
// to being unverifiable).
func (r VerificationResult) Tampered() bool {
	return !r.Verified && len(r.Mismatches) > 0
}

// BatchReport aggregates independent per-entry verifications.
type BatchReport struct {
	Total    int                  `json:"total"`
	Verified int                  `json:"verified"`
	Failed   int                  `json:"failed"`
	Results  []VerificationResult `json:"results"`
}
