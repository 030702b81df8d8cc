package accesslog

import "time"

// AccessLogEntry is the immutable off-chain record of one access decision.
// Created solely by the logger at decision time and never mutated; only a
// data-retention policy may remove it. BlockchainLogIndex is the anchor used
// for later cross-verification and is nil when the ledger write failed or
// anchoring is disabled.
type AccessLogEntry struct {
	ID            string
	ControllerID  string
	SubjectID     string
	Action        string
	Decision      string
	Reason        string
	Purpose       string
	PolicyGroupID string
	PolicyVersion int64
	RequestTime   time.Time
	ClientIP      string
	UserAgent     string

	BlockchainLogIndex *uint64
	BlockchainTxHash   string
}

// Anchored reports whether the entry carries a ledger anchor.
func (e AccessLogEntry) Anchored() bool { return e.BlockchainLogIndex != nil }
