// Package events publishes transfer notifications to NATS JetStream so
// other systems can react to outgoing transfers without polling.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/sonic-agent/sonicbot/service/metrics"
)

const (
	streamName     = "TRANSFERS"
	subjectPrefix  = "transfers"
	publishTimeout = 5 * time.Second
)

// TransferEvent describes one completed SOL transfer.
type TransferEvent struct {
	Wallet    string    `json:"wallet"`
	Recipient string    `json:"recipient"`
	Lamports  uint64    `json:"lamports"`
	Signature string    `json:"signature"`
	Network   string    `json:"network"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits transfer events. A nil Publisher is valid and disables
// publishing.
type Publisher interface {
	PublishTransfer(ctx context.Context, event TransferEvent) error
	Close()
}

// NATSPublisher publishes transfer events to JetStream.
type NATSPublisher struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewNATSPublisher connects to NATS and ensures the transfer stream exists.
func NewNATSPublisher(url string, m *metrics.Metrics, logger *slog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{subjectPrefix + ".>"},
		Storage:  nats.FileStorage,
		MaxAge:   30 * 24 * time.Hour,
	})
	if err != nil && err != nats.ErrStreamNameAlreadyInUse {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream: %w", err)
	}

	return &NATSPublisher{nc: nc, js: js, logger: logger, metrics: m}, nil
}

// PublishTransfer emits the event on transfers.{wallet}.
func (p *NATSPublisher) PublishTransfer(ctx context.Context, event TransferEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal transfer event: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", subjectPrefix, event.Wallet)

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	start := time.Now()
	_, err = p.js.Publish(subject, payload, nats.Context(ctx))
	duration := time.Since(start).Seconds()
	if err != nil {
		p.metrics.RecordNATSPublish(subject, "error", duration)
		return fmt.Errorf("failed to publish transfer event: %w", err)
	}

	p.metrics.RecordNATSPublish(subject, "success", duration)
	p.logger.DebugContext(ctx, "published transfer event",
		"subject", subject, "signature", event.Signature)
	return nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// MockPublisher records published events for tests.
type MockPublisher struct {
	Events []TransferEvent
	Err    error
}

func (m *MockPublisher) PublishTransfer(_ context.Context, event TransferEvent) error {
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockPublisher) Close() {}
