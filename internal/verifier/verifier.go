package verifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"custodia/internal/accesslog"
	"custodia/internal/decision"
	"custodia/internal/ledger"
	"custodia/internal/verifier/metrics"
)

// batchParallelism caps concurrent ledger reads during batch verification.
const batchParallelism = 8

// Verifier re-derives the expected on-chain representation of stored log
// entries and compares it field by field against what the ledger actually
// holds. A divergence means the off-chain record was tampered with (or the
// ledger write was corrupted); either way the operator sees which field.
type Verifier struct {
	ledger  ledger.Client
	cache   *Cache
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(ledgerClient ledger.Client, cache *Cache, logger *slog.Logger, m *metrics.Metrics) *Verifier {
	return &Verifier{
		ledger:  ledgerClient,
		cache:   cache,
		logger:  logger,
		metrics: m,
	}
}

// VerifyOne cross-checks a single entry. An entry without an anchor yields
// verified=false with ErrNoAnchor - it cannot be verified, which is not the
// same as having failed verification. Ledger read failures are likewise
// reported as errors, never as mismatches.
func (v *Verifier) VerifyOne(ctx context.Context, entry accesslog.AccessLogEntry) VerificationResult {
	if cached, ok := v.cache.Get(ctx, entry.ID); ok {
		return cached
	}

	result := v.verify(ctx, entry)
	result.VerifiedAt = time.Now().UTC()

	v.metrics.IncrementVerification(outcomeLabel(result))
	if result.Tampered() {
		v.logger.WarnContext(ctx, "ledger cross-verification found divergence",
			"entry_id", entry.ID,
			"mismatched_fields", len(result.Mismatches),
		)
	}

	// Only settled outcomes are cached; transient ledger errors must retry.
	if result.Verified || result.Tampered() {
		v.cache.Set(ctx, result)
	}
	return result
}

func (v *Verifier) verify(ctx context.Context, entry accesslog.AccessLogEntry) VerificationResult {
	result := VerificationResult{EntryID: entry.ID, Mismatches: []Mismatch{}}

	if entry.BlockchainLogIndex == nil {
		result.Error = ErrNoAnchor
		return result
	}

	record, err := v.ledger.Read(ctx, *entry.BlockchainLogIndex)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			result.Error = fmt.Sprintf("ledger holds no record at index %d", *entry.BlockchainLogIndex)
		} else {
			result.Error = fmt.Sprintf("ledger unavailable: %v", err)
		}
		return result
	}

	result.Mismatches = compare(entry, record)
	result.Verified = len(result.Mismatches) == 0
	return result
}

// compare checks the stored entry against the on-chain record field by
// field. Addresses compare case-insensitively; everything else is exact.
func compare(entry accesslog.AccessLogEntry, record ledger.Record) []Mismatch {
	mismatches := []Mismatch{}

	if addr, err := ledger.DeriveAddress(entry.ControllerID); err != nil || !ledger.EqualAddress(addr, record.ControllerAddress) {
		mismatches = append(mismatches, Mismatch{
			Field:   "controllerAddress",
			Stored:  addr,
			OnChain: record.ControllerAddress,
		})
	}

	if addr, err := ledger.DeriveAddress(entry.SubjectID); err != nil || !ledger.EqualAddress(addr, record.SubjectAddress) {
		mismatches = append(mismatches, Mismatch{
			Field:   "subjectAddress",
			Stored:  addr,
			OnChain: record.SubjectAddress,
		})
	}

	if entry.Action != record.Action {
		mismatches = append(mismatches, Mismatch{
			Field:   "action",
			Stored:  entry.Action,
			OnChain: record.Action,
		})
	}

	permitted := entry.Decision == string(decision.ResultPermit)
	if permitted != record.Permitted {
		mismatches = append(mismatches, Mismatch{
			Field:   "permitted",
			Stored:  strconv.FormatBool(permitted),
			OnChain: strconv.FormatBool(record.Permitted),
		})
	}

	if entry.PolicyGroupID != record.PolicyGroupID {
		mismatches = append(mismatches, Mismatch{
			Field:   "policyGroupId",
			Stored:  entry.PolicyGroupID,
			OnChain: record.PolicyGroupID,
		})
	}

	return mismatches
}

// VerifyBatch verifies entries independently: one entry's ledger lookup
// failing never aborts the rest. Reads run concurrently under a parallelism
// cap; counters accumulate under a lock.
func (v *Verifier) VerifyBatch(ctx context.Context, entries []accesslog.AccessLogEntry) BatchReport {
	report := BatchReport{
		Total:   len(entries),
		Results: make([]VerificationResult, len(entries)),
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchParallelism)

	for i, entry := range entries {
		g.Go(func() error {
			result := v.VerifyOne(ctx, entry)

			mu.Lock()
			report.Results[i] = result
			if result.Verified {
				report.Verified++
			} else {
				report.Failed++
			}
			mu.Unlock()
			return nil
		})
	}
	// Goroutines never return errors; Wait only fences completion.
	_ = g.Wait()

	return report
}
