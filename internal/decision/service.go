package decision

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"custodia/internal/decision/metrics"
	"custodia/pkg/requestcontext"
)

var tracer = otel.Tracer("custodia/decision")

// EvaluateResult is the service-level outcome: the decision plus audit
// metadata the transport surfaces to the caller.
type EvaluateResult struct {
	Decision      AccessDecision
	LogEntryID    string
	DegradedAudit bool
	EvaluatedAt   time.Time
}

// Service orchestrates one access check: validate, resolve covering policy
// snapshots, run the pure engine, record the decision, and emit obligations.
// The engine itself stays side-effect free; everything stateful lives here.
type Service struct {
	resolver PolicyResolver
	recorder Recorder
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(resolver PolicyResolver, recorder Recorder, notifier Notifier, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		resolver: resolver,
		recorder: recorder,
		notifier: notifier,
		logger:   logger,
		metrics:  m,
	}
}

// Evaluate answers an access request. Both PERMIT and DENY are recorded;
// denial is not an exemption from audit. Only a local log-store failure
// aborts the response, since an unrecorded decision would break the
// every-decision-is-logged guarantee.
func (s *Service) Evaluate(ctx context.Context, req AccessRequest) (*EvaluateResult, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "decision.Evaluate", trace.WithAttributes(
		attribute.String("custodia.action", string(req.Action)),
		attribute.String("custodia.data_source", req.DataSource),
	))
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	item, err := req.Item()
	if err != nil {
		return nil, err
	}

	evalTime := requestcontext.Now(ctx)

	groups, err := s.resolver.ResolveCovering(ctx, req.SubjectTaxID, req.DataSource, item)
	if err != nil {
		return nil, err
	}

	dec := Evaluate(groups, req, evalTime)
	span.SetAttributes(
		attribute.String("custodia.result", string(dec.Result)),
		attribute.Int("custodia.covering_groups", len(groups)),
	)

	entryID, degraded, err := s.recorder.Record(ctx, req, dec)
	if err != nil {
		s.logger.ErrorContext(ctx, "access decision could not be recorded",
			"request_id", requestcontext.RequestID(ctx),
			"controller_id", req.ControllerID,
			"error", err,
		)
		return nil, err
	}
	if degraded {
		s.metrics.IncrementDegradedAudit()
		s.logger.WarnContext(ctx, "decision recorded without ledger anchor",
			"request_id", requestcontext.RequestID(ctx),
			"log_entry_id", entryID,
		)
	}

	s.dispatchObligations(ctx, req, dec)

	s.metrics.IncrementOutcome(string(dec.Result), string(req.Action))
	s.metrics.ObserveEvaluateLatency(time.Since(start))

	return &EvaluateResult{
		Decision:      dec,
		LogEntryID:    entryID,
		DegradedAudit: degraded,
		EvaluatedAt:   evalTime,
	}, nil
}

func (s *Service) dispatchObligations(ctx context.Context, req AccessRequest, dec AccessDecision) {
	if s.notifier == nil || !dec.Permitted() {
		return
	}
	for _, ob := range dec.Obligations {
		if ob.Type != ObligationNotify {
			continue
		}
		if err := s.notifier.NotifySubject(ctx, req.SubjectTaxID, req.ControllerID, req.Purpose); err != nil {
			s.logger.WarnContext(ctx, "notify obligation delivery failed",
				"request_id", requestcontext.RequestID(ctx),
				"subject_id", req.SubjectTaxID,
				"error", err,
			)
		}
	}
}
