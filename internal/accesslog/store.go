package accesslog

import "context"

// Store persists access log entries. Append-only by contract: no update or
// delete methods exist, matching the immutability of the entries themselves.
type Store interface {
	Append(ctx context.Context, entry AccessLogEntry) error
	Get(ctx context.Context, entryID string) (AccessLogEntry, error)
	ListByController(ctx context.Context, controllerID string) ([]AccessLogEntry, error)
	ListBySubject(ctx context.Context, subjectID string) ([]AccessLogEntry, error)
}
