package ledger

import (
	"context"
	"errors"
)

// ErrNotFound reports a read at an index the ledger does not hold.
var ErrNotFound = errors.New("ledger: record not found")

// Client is the boundary to the external append-only ledger. Write assigns
// the next index and returns it together with the transaction hash; Read
// returns the record at an index. The ledger is write-once, read-many: no
// update or delete exists.
type Client interface {
	Write(ctx context.Context, record Record) (index uint64, txHash string, err error)
	Read(ctx context.Context, index uint64) (Record, error)
}
