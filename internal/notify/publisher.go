// Package notify delivers notify obligations to the subject-notification
// pipeline over Kafka. Downstream consumers (mail, push) are outside this
// service; the topic is the contract.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"custodia/pkg/requestcontext"
)

// Event is the message published for every notify obligation on a permit.
type Event struct {
	SubjectID    string    `json:"subjectId"`
	ControllerID string    `json:"controllerId"`
	Purpose      string    `json:"purpose"`
	OccurredAt   time.Time `json:"occurredAt"`
	RequestID    string    `json:"requestId,omitempty"`
}

// Publisher writes notification events to Kafka. Publishing is synchronous
// with a short producer timeout; a failed publish is the caller's to log,
// never to propagate into the decision path.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewPublisher connects to the brokers and ensures the topic exists.
func NewPublisher(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProduceRequestTimeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	if _, err := admin.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
		// Already-exists is the normal case after first boot.
		logger.InfoContext(ctx, "notification topic not created", "topic", topic, "reason", err)
	}

	return &Publisher{client: client, topic: topic, logger: logger}, nil
}

// NotifySubject publishes one notification event for the subject.
func (p *Publisher) NotifySubject(ctx context.Context, subjectID, controllerID, purpose string) error {
	record, err := newRecord(ctx, p.topic, subjectID, controllerID, purpose)
	if err != nil {
		return err
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce notification event: %w", err)
	}
	return nil
}

// newRecord builds the event record, keyed by subject so one subject's
// notifications stay ordered within a partition.
func newRecord(ctx context.Context, topic, subjectID, controllerID, purpose string) (*kgo.Record, error) {
	event := Event{
		SubjectID:    subjectID,
		ControllerID: controllerID,
		Purpose:      purpose,
		OccurredAt:   time.Now().UTC(),
		RequestID:    requestcontext.RequestID(ctx),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal notification event: %w", err)
	}

	return &kgo.Record{
		Topic: topic,
		Key:   []byte(subjectID),
		Value: value,
	}, nil
}

// Close flushes and releases the Kafka client.
func (p *Publisher) Close() {
	p.client.Close()
}
