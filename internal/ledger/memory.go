package ledger

import (
	"context"
	"fmt"
	"sync"
)

// MemoryLedger is an embedded append-only log with the same contract as the
// external ledger service. Used in dev mode and by tests.
type MemoryLedger struct {
	mu      sync.RWMutex
	records []Record
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

func (l *MemoryLedger) Write(_ context.Context, record Record) (uint64, string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	index := uint64(len(l.records))
	l.records = append(l.records, record)

	digest := keccak256(fmt.Appendf(nil, "%d|%s|%s|%s|%s|%t|%s|%d|%d",
		index,
		record.ControllerAddress,
		record.SubjectAddress,
		record.PurposeHash,
		record.Action,
		record.Permitted,
		record.PolicyGroupID,
		record.PolicyVersion,
		record.Timestamp,
	))
	return index, fmt.Sprintf("0x%x", digest), nil
}

func (l *MemoryLedger) Read(_ context.Context, index uint64) (Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index >= uint64(len(l.records)) {
		return Record{}, ErrNotFound
	}
	return l.records[index], nil
}

// Tamper overwrites the record at index. Only reachable from tests that need
// to simulate on-chain/off-chain divergence; the Client interface deliberately
// exposes no mutation.
func (l *MemoryLedger) Tamper(index uint64, mutate func(*Record)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index >= uint64(len(l.records)) {
		return ErrNotFound
	}
	mutate(&l.records[index])
	return nil
}

// Len reports how many records the ledger holds.
func (l *MemoryLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
