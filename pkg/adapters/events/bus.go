package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/aretw0/portflow/internal/logging"
	"github.com/aretw0/portflow/pkg/domain"
)

// Topic carries every lifecycle event.
const Topic = "portflow.events"

// Message metadata keys.
const (
	TypeMetadataKey    = "event_type"
	NetworkMetadataKey = "network"
)

// Bus publishes network lifecycle events as watermill messages.
type Bus struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger reports publish failures.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// NewBus creates a bus publishing to pub.
func NewBus(pub message.Publisher, opts ...Option) *Bus {
	b := &Bus{
		publisher: pub,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewGoChannel creates an in-process pubsub. Publishing blocks until every
// subscriber acknowledged, so subscribers see events in order.
func NewGoChannel(logger *slog.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            64,
			BlockPublishUntilSubscriberAck: true,
		},
		watermill.NewSlogLogger(logger),
	)
}

// Publish sends one event. The type and network travel as message metadata.
func (b *Bus) Publish(eventType domain.EventType, network string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	msg := message.NewMessage(watermill.NewULID(), payload)
	msg.Metadata.Set(TypeMetadataKey, string(eventType))
	msg.Metadata.Set(NetworkMetadataKey, network)
	return b.publisher.Publish(Topic, msg)
}

// Hooks returns lifecycle hooks publishing every event on the bus.
func (b *Bus) Hooks() domain.LifecycleHooks {
	processor := func(e *domain.ProcessorEvent) { b.publish(e.EventBase, e) }
	connection := func(e *domain.ConnectionEvent) { b.publish(e.EventBase, e) }
	return domain.LifecycleHooks{
		OnProcessorAdded:    processor,
		OnProcessorRemoved:  processor,
		OnInvalidated:       processor,
		OnConnectionAdded:   connection,
		OnConnectionRemoved: connection,
		OnEvaluated: func(e *domain.EvaluationEvent) {
			b.publish(e.EventBase, evaluation{EvaluationEvent: e, Error: errString(e.Err)})
		},
	}
}

func (b *Bus) publish(base domain.EventBase, event any) {
	if err := b.Publish(base.Type, base.Network, event); err != nil {
		b.logger.Warn("failed to publish event", "type", base.Type, "err", err)
	}
}

// evaluation adds the error text, which the event itself does not marshal.
type evaluation struct {
	*domain.EvaluationEvent
	Error string `json:"error,omitempty"`
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Envelope is a received event: its type, network and raw JSON body.
type Envelope struct {
	Type    domain.EventType `json:"type"`
	Network string           `json:"network,omitempty"`
	Payload json.RawMessage  `json:"payload"`
}

// Subscribe delivers every event published on sub until ctx is done. Each
// message is acknowledged once handle returns.
func Subscribe(ctx context.Context, sub message.Subscriber, handle func(Envelope)) error {
	messages, err := sub.Subscribe(ctx, Topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", Topic, err)
	}

	go func() {
		for msg := range messages {
			env := Envelope{
				Type:    domain.EventType(msg.Metadata.Get(TypeMetadataKey)),
				Network: msg.Metadata.Get(NetworkMetadataKey),
				Payload: json.RawMessage(msg.Payload),
			}
			handle(env)
			msg.Ack()
		}
	}()
	return nil
}
