package handler

import (
	"time"

	"custodia/internal/accesslog"
)

// EntryResponse is the transport shape of one access log entry.
type EntryResponse struct {
	ID                 string    `json:"id"`
	ControllerID       string    `json:"controllerId"`
	SubjectID          string    `json:"subjectId"`
	Action             string    `json:"action"`
	Decision           string    `json:"decision"`
	Reason             string    `json:"reason"`
	Purpose            string    `json:"purpose"`
	PolicyGroupID      string    `json:"policyGroupId,omitempty"`
	PolicyVersion      int64     `json:"policyVersion,omitempty"`
	RequestTime        time.Time `json:"requestTime"`
	ClientIP           string    `json:"clientIp,omitempty"`
	UserAgent          string    `json:"userAgent,omitempty"`
	BlockchainLogIndex *uint64   `json:"blockchainLogIndex,omitempty"`
	BlockchainTxHash   string    `json:"blockchainTxHash,omitempty"`
	Anchored           bool      `json:"anchored"`
}

// FromEntry converts a domain entry for the wire.
func FromEntry(e accesslog.AccessLogEntry) EntryResponse {
	return EntryResponse{
		ID:                 e.ID,
		ControllerID:       e.ControllerID,
		SubjectID:          e.SubjectID,
		Action:             e.Action,
		Decision:           e.Decision,
		Reason:             e.Reason,
		Purpose:            e.Purpose,
		PolicyGroupID:      e.PolicyGroupID,
		PolicyVersion:      e.PolicyVersion,
		RequestTime:        e.RequestTime,
		ClientIP:           e.ClientIP,
		UserAgent:          e.UserAgent,
		BlockchainLogIndex: e.BlockchainLogIndex,
		BlockchainTxHash:   e.BlockchainTxHash,
		Anchored:           e.Anchored(),
	}
}

// FromEntries converts a list of domain entries for the wire.
func FromEntries(entries []accesslog.AccessLogEntry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromEntry(e))
	}
	return out
}
