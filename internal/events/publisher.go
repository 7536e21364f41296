// Package events publishes run-completed notifications to Kafka. Publishing
// is best-effort, mirroring the audit-write contract: a broker outage is
// logged and never surfaces to the caller of a validation run.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"lcvet/internal/platform/config"
)

// RunCompleted describes one finished validation run.
type RunCompleted struct {
	DocumentID        string    `json:"document_id"`
	OverallStatus     string    `json:"overall_status"`
	TotalRulesChecked int       `json:"total_rules_checked"`
	Passed            int       `json:"passed"`
	Failed            int       `json:"failed"`
	Warnings          int       `json:"warnings"`
	Timestamp         time.Time `json:"timestamp"`
}

// Publisher emits RunCompleted events, keyed by document id so a document's
// runs land in one partition in order.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewPublisher connects to Kafka. Returns nil if no brokers are configured
// (publishing disabled).
func NewPublisher(cfg config.KafkaConfig, logger *slog.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Publisher{client: client, topic: cfg.Topic, logger: logger}, nil
}

// RunCompleted publishes one event asynchronously. Delivery failures are
// logged, never returned.
func (p *Publisher) RunCompleted(ctx context.Context, event RunCompleted) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "marshal run-completed event failed", "error", err.Error())
		return
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.DocumentID),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("publish run-completed event failed",
				"document_id", event.DocumentID,
				"error", err.Error(),
			)
		}
	})
}

// Close flushes pending events and releases the client.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.client.Flush(ctx); err != nil {
		p.logger.Error("flush pending events failed", "error", err.Error())
	}
	p.client.Close()
}
