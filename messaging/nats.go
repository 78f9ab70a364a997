// Package messaging publishes plan lifecycle events to NATS JetStream.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gatherly-api/logger"
	"gatherly-api/models"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

const (
	// StreamName is the JetStream stream holding plan events.
	StreamName = "PLANS"

	// SubjectPrefix is the prefix for all plan subjects.
	SubjectPrefix = "plans"
)

// Client wraps the NATS connection and its JetStream context.
type Client struct {
	conn *nats.Conn
	js   jetstream.JetStream
}

// Connect establishes a connection to the NATS server.
func Connect(url string, log *logger.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("gatherly-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &Client{conn: nc, js: js}, nil
}

// JetStream returns the JetStream context.
func (c *Client) JetStream() jetstream.JetStream {
	return c.js
}

// Close drains and closes the connection.
func (c *Client) Close() {
	if c.conn != nil {
		_ = c.conn.Drain()
	}
}

// EnsureStream creates the plans stream if it does not exist yet.
func (c *Client) EnsureStream(ctx context.Context) error {
	if _, err := c.js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := c.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Plan lifecycle events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// EventSubject returns the subject for a plan event, e.g. plans.<id>.closed.
func EventSubject(planID, event string) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, planID, event)
}

// StreamPublisher is the publishing half of jetstream.JetStream.
type StreamPublisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher turns lifecycle events into JSON messages on the plans stream.
type Publisher struct {
	js StreamPublisher
}

func NewPublisher(js StreamPublisher) *Publisher {
	return &Publisher{js: js}
}

func (p *Publisher) VotingStarted(ctx context.Context, e models.VotingStartedEvent) error {
	return p.publish(ctx, EventSubject(e.PlanID, "voting_started"), e)
}

func (p *Publisher) PlanClosed(ctx context.Context, e models.PlanClosedEvent) error {
	return p.publish(ctx, EventSubject(e.PlanID, "closed"), e)
}

func (p *Publisher) PlanCancelled(ctx context.Context, e models.PlanCancelledEvent) error {
	return p.publish(ctx, EventSubject(e.PlanID, "cancelled"), e)
}

func (p *Publisher) publish(ctx context.Context, subject string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}
