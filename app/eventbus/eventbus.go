package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go"
)

// QueueGroup is shared by every backend replica so each event is handled once.
const QueueGroup = "backend"

// EventBus bundles the watermill publisher and subscriber with a plain NATS connection
// used for request-reply.
type EventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	conn       *nats.Conn
	logger     *slog.Logger
}

// NewEventBus connects to NATS and creates the watermill publisher and subscriber.
func NewEventBus(ctx context.Context, natsURL string, logger *slog.Logger) (*EventBus, error) {
	if logger == nil {
		logger = slog.Default()
	}

	natsOptions := []nats.Option{
		nats.Name("rugby-bot"),
		nats.RetryOnFailedConnect(true),
		nats.Timeout(10 * time.Second),
	}

	// Connect to NATS
	conn, err := nats.Connect(natsURL, natsOptions...)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to NATS", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	// Create a Watermill logger that wraps slog
	watermillLogger := watermill.NewSlogLogger(logger)
	marshaler := &wmnats.NATSMarshaler{}
	jsConfig := wmnats.JetStreamConfig{Disabled: true}

	publisher, err := wmnats.NewPublisher(
		wmnats.PublisherConfig{
			URL:         natsURL,
			NatsOptions: natsOptions,
			Marshaler:   marshaler,
			JetStream:   jsConfig,
		},
		watermillLogger,
	)
	if err != nil {
		conn.Close()
		logger.ErrorContext(ctx, "Failed to create Watermill publisher", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(
		wmnats.SubscriberConfig{
			URL:              natsURL,
			QueueGroupPrefix: QueueGroup,
			SubscribersCount: 1,
			CloseTimeout:     5 * time.Second,
			NatsOptions:      natsOptions,
			Unmarshaler:      marshaler,
			JetStream:        jsConfig,
		},
		watermillLogger,
	)
	if err != nil {
		conn.Close()
		_ = publisher.Close()
		logger.ErrorContext(ctx, "Failed to create Watermill subscriber", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	logger.InfoContext(ctx, "Event bus connected", slog.String("url", natsURL))
	return &EventBus{
		publisher:  publisher,
		subscriber: subscriber,
		conn:       conn,
		logger:     logger,
	}, nil
}

// Publisher returns the watermill publisher.
func (eb *EventBus) Publisher() message.Publisher { return eb.publisher }

// Subscriber returns the watermill subscriber.
func (eb *EventBus) Subscriber() message.Subscriber { return eb.subscriber }

// Conn returns the raw NATS connection.
func (eb *EventBus) Conn() *nats.Conn { return eb.conn }

// HealthCheck reports whether the NATS connection is usable.
func (eb *EventBus) HealthCheck() error {
	if eb.conn == nil || !eb.conn.IsConnected() {
		return errors.New("nats connection is not established")
	}
	return nil
}

// Close closes all NATS and Watermill resources.
func (eb *EventBus) Close() error {
	var errs []error
	if eb.publisher != nil {
		if err := eb.publisher.Close(); err != nil {
			eb.logger.Error("Error closing NATS publisher", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	if eb.subscriber != nil {
		if err := eb.subscriber.Close(); err != nil {
			eb.logger.Error("Error closing NATS subscriber", slog.Any("error", err))
			errs = append(errs, err)
		}
	}

	// Close the NATS connection
	if eb.conn != nil {
		eb.conn.Drain()
	}
	return errors.Join(errs...)
}
