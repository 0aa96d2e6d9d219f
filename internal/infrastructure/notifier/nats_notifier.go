// Package notifier forwards domain events to the external notification
// pipeline over NATS. It subscribes to the in-process event bus and publishes
// a JSON envelope per event; a separate delivery worker turns those into
// emails and push notifications.
package notifier

import (
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"github.com/mentor-bridge/mentor-bridge-hub/pkg/circuitbreaker"
	"github.com/mentor-bridge/mentor-bridge-hub/pkg/retry"

	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Subscriber is the event source the notifier attaches to.
type Subscriber interface {
	SubscribeAll(handler shared.EventHandler) error
}

// forwardable lists the event types that leave the process. Internal events
// such as cache invalidation do not need delivery infrastructure.
var forwardable = map[shared.EventType]bool{
	shared.EventSessionRequested:          true,
	shared.EventSessionConfirmed:          true,
	shared.EventSessionDeclined:           true,
	shared.EventSessionRescheduleProposed: true,
	shared.EventSessionCancelled:          true,
	shared.EventSessionCompleted:          true,
	shared.EventSessionExpired:            true,
	shared.EventReminderDue:               true,
}

// envelope is the wire format published to NATS.
type envelope struct {
	EventType   string                 `json:"event_type"`
	AggregateID string                 `json:"aggregate_id"`
	OccurredAt  time.Time              `json:"occurred_at"`
	Payload     map[string]interface{} `json:"payload"`
}

// Config contains configuration for the NATS notifier.
type Config struct {
	// URL is the NATS server URL.
	URL string

	// SubjectPrefix prefixes every published subject
	// (e.g. "mentorbridge" yields "mentorbridge.session.confirmed").
	SubjectPrefix string

	// FailureThreshold is the circuit breaker failure threshold.
	FailureThreshold int

	// BreakerTimeout is how long the circuit stays open before probing.
	BreakerTimeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		URL:              nats.DefaultURL,
		SubjectPrefix:    "mentorbridge",
		FailureThreshold: 5,
		BreakerTimeout:   30 * time.Second,
	}
}

// Notifier publishes forwardable domain events to NATS.
// Publishing is protected by a retrier and a circuit breaker: a dead broker
// degrades notifications, never the booking flow itself.
type Notifier struct {
	conn          *nats.Conn
	subjectPrefix string
	retrier       *retry.Retrier
	breaker       *circuitbreaker.CircuitBreaker
	logger        *slog.Logger
}

// New connects to NATS and returns a Notifier.
func New(config Config) (*Notifier, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.SubjectPrefix == "" {
		config.SubjectPrefix = "mentorbridge"
	}

	conn, err := nats.Connect(config.URL,
		nats.Name("mentor-bridge-hub"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	opts := []circuitbreaker.Option{}
	if config.FailureThreshold > 0 {
		opts = append(opts, circuitbreaker.WithFailureThreshold(config.FailureThreshold))
	}
	if config.BreakerTimeout > 0 {
		opts = append(opts, circuitbreaker.WithTimeout(config.BreakerTimeout))
	}

	return &Notifier{
		conn:          conn,
		subjectPrefix: config.SubjectPrefix,
		retrier:       retry.NotifierRetrier(),
		breaker:       circuitbreaker.New("nats", opts...),
		logger:        config.Logger,
	}, nil
}

// AttachTo subscribes the notifier to an event source.
func (n *Notifier) AttachTo(bus Subscriber) error {
	return bus.SubscribeAll(n.HandleEvent)
}

// HandleEvent forwards a single event to NATS. Non-forwardable events are
// ignored. Implements shared.EventHandler.
func (n *Notifier) HandleEvent(ctx context.Context, event shared.Event) error {
	if !forwardable[event.EventType()] {
		return nil
	}

	env := envelope{
		EventType:   string(event.EventType()),
		AggregateID: event.AggregateID(),
		OccurredAt:  event.OccurredAt(),
		Payload:     event.Payload(),
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := n.subjectPrefix + "." + string(event.EventType())

	err = n.breaker.Execute(ctx, func(ctx context.Context) error {
		return n.retrier.Do(ctx, func(ctx context.Context) error {
			return n.conn.Publish(subject, data)
		})
	})
	if err != nil {
		n.logger.Error("failed to publish event to nats",
			"subject", subject,
			"event_type", event.EventType(),
			"error", err,
		)
		return err
	}

	n.logger.Debug("event forwarded",
		"subject", subject,
		"aggregate_id", event.AggregateID(),
	)

	return nil
}

// IsConnected reports whether the underlying connection is up.
func (n *Notifier) IsConnected() bool {
	return n.conn.IsConnected()
}

// Close drains the connection and releases resources.
func (n *Notifier) Close() {
	if err := n.conn.Drain(); err != nil {
		n.logger.Error("failed to drain nats connection", "error", err)
	}
}
