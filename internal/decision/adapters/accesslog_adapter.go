package adapters

import (
	"context"

	"custodia/internal/accesslog"
	"custodia/internal/decision"
)

// AccessLogRecorder adapts the accesslog service to the decision module's
// Recorder port.
type AccessLogRecorder struct {
	service *accesslog.Service
}

func NewAccessLogRecorder(service *accesslog.Service) *AccessLogRecorder {
	return &AccessLogRecorder{service: service}
}

func (a *AccessLogRecorder) Record(ctx context.Context, req decision.AccessRequest, dec decision.AccessDecision) (string, bool, error) {
	entry, degraded, err := a.service.Record(ctx, req, dec)
	if err != nil {
		return "", degraded, err
	}
	return entry.ID, degraded, nil
}
