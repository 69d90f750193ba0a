package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
)

type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaNotifier publishes tickets as JSON records; a mail bridge downstream
// forwards them to the tracker.
type KafkaNotifier struct {
	client producer
	topic  string
	logger *slog.Logger
}

// NewKafkaClient connects a franz-go producer to brokers.
func NewKafkaClient(brokers []string, topic string) (*kgo.Client, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers must not be empty")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// NewKafkaNotifier wraps a producing client.
func NewKafkaNotifier(client *kgo.Client, topic string, logger *slog.Logger) *KafkaNotifier {
	return newKafkaNotifier(client, topic, logger)
}

func newKafkaNotifier(p producer, topic string, logger *slog.Logger) *KafkaNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaNotifier{client: p, topic: topic, logger: logger}
}

// Notify produces one record keyed by the ticket ID and waits for the ack.
func (k *KafkaNotifier) Notify(ctx context.Context, t Ticket) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal ticket: %w", err)
	}

	rec := &kgo.Record{Topic: k.topic, Key: []byte(t.ID), Value: payload}
	if err := k.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce ticket: %w", err)
	}
	k.logger.InfoContext(ctx, "contact ticket published", "ticket_id", t.ID, "topic", k.topic)
	return nil
}

// LogNotifier only logs tickets. It is used when no brokers are configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(ctx context.Context, t Ticket) error {
	l.logger.InfoContext(ctx, "contact ticket", "to", t.To, "subject", t.Subject, "assignee", t.Handle)
	return nil
}

var (
	_ Notifier = (*KafkaNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
)
