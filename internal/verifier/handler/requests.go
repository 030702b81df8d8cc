package handler

// VerifyBatchRequest selects which entries to verify. An empty EntryIDs list
// means the caller's entire accessible log.
type VerifyBatchRequest struct {
	EntryIDs []string `json:"entryIds,omitempty"`
}
