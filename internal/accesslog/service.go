package accesslog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"custodia/internal/decision"
	"custodia/internal/ledger"
	"custodia/pkg/requestcontext"
)

// Service records every access decision - permitted or denied - as an
// immutable log entry anchored on the ledger. The ledger write happens
// synchronously before local persistence so the anchor lands in the entry,
// but a ledger outage never blocks the decision: the entry is persisted
// anchor-less and the caller receives a degraded-audit warning instead.
type Service struct {
	store  Store
	ledger ledger.Client
	logger *slog.Logger

	// sem caps in-flight ledger writes so a slow ledger cannot pile up
	// unbounded pending entries.
	sem chan struct{}
}

func NewService(store Store, ledgerClient ledger.Client, logger *slog.Logger, maxInflightWrites int) *Service {
	if maxInflightWrites < 1 {
		maxInflightWrites = 1
	}
	return &Service{
		store:  store,
		ledger: ledgerClient,
		logger: logger,
		sem:    make(chan struct{}, maxInflightWrites),
	}
}

// Record writes the decision to the ledger and then to the local store.
// degraded is true when the entry carries no anchor; err is non-nil only
// when local persistence failed, which is the one fatal path - an unrecorded
// decision breaks the audit guarantee.
func (s *Service) Record(ctx context.Context, req decision.AccessRequest, dec decision.AccessDecision) (*AccessLogEntry, bool, error) {
	entry := AccessLogEntry{
		ID:            uuid.NewString(),
		ControllerID:  req.ControllerID,
		SubjectID:     req.SubjectTaxID,
		Action:        string(req.Action),
		Decision:      string(dec.Result),
		Reason:        dec.Reason,
		Purpose:       req.Purpose,
		PolicyGroupID: dec.PolicyGroupID,
		PolicyVersion: dec.PolicyVersion,
		RequestTime:   requestcontext.Now(ctx).UTC(),
		ClientIP:      requestcontext.ClientIP(ctx),
		UserAgent:     requestcontext.UserAgent(ctx),
	}

	degraded := false
	index, txHash, err := s.anchor(ctx, entry, dec)
	if err != nil {
		degraded = true
		s.logger.WarnContext(ctx, "ledger anchoring failed, persisting entry local-only",
			"request_id", requestcontext.RequestID(ctx),
			"entry_id", entry.ID,
			"error", err,
		)
	} else {
		entry.BlockchainLogIndex = &index
		entry.BlockchainTxHash = txHash
	}

	if err := s.store.Append(ctx, entry); err != nil {
		return nil, degraded, fmt.Errorf("persist access log entry: %w", err)
	}
	return &entry, degraded, nil
}

// anchor derives the compact ledger record and writes it under the in-flight
// cap. The returned index is the only handle ever stored for verification.
func (s *Service) anchor(ctx context.Context, entry AccessLogEntry, dec decision.AccessDecision) (uint64, string, error) {
	controllerAddr, err := ledger.DeriveAddress(entry.ControllerID)
	if err != nil {
		return 0, "", fmt.Errorf("derive controller address: %w", err)
	}
	subjectAddr, err := ledger.DeriveAddress(entry.SubjectID)
	if err != nil {
		return 0, "", fmt.Errorf("derive subject address: %w", err)
	}

	record := ledger.Record{
		ControllerAddress: controllerAddr,
		SubjectAddress:    subjectAddr,
		PurposeHash:       ledger.HashPurpose(entry.Purpose),
		Action:            entry.Action,
		Permitted:         dec.Permitted(),
		PolicyGroupID:     entry.PolicyGroupID,
		PolicyVersion:     entry.PolicyVersion,
		Timestamp:         entry.RequestTime.Unix(),
	}

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		return 0, "", ctx.Err()
	}

	return s.ledger.Write(ctx, record)
}

// ListByController returns the controller's decision history, newest first
// for the postgres store.
func (s *Service) ListByController(ctx context.Context, controllerID string) ([]AccessLogEntry, error) {
	return s.store.ListByController(ctx, controllerID)
}

// ListBySubject returns every decision made over the subject's data.
func (s *Service) ListBySubject(ctx context.Context, subjectID string) ([]AccessLogEntry, error) {
	return s.store.ListBySubject(ctx, subjectID)
}

// Get returns a single entry by ID.
func (s *Service) Get(ctx context.Context, entryID string) (AccessLogEntry, error) {
	return s.store.Get(ctx, entryID)
}
