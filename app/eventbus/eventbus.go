package eventbus

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nkeys"
)

// Config selects the transport. An empty URL keeps everything in process.
type Config struct {
	URL        string
	NKeySeed   string
	QueueGroup string
}

// EventBus is the publisher and subscriber shared by every module router.
type EventBus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	closers    []func() error
}

// NewEventBus connects to NATS, or builds an in-process bus when cfg.URL is
// empty.
func NewEventBus(cfg Config, logger *slog.Logger) (*EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)

	if cfg.URL == "" {
		logger.Info("Using in-process event bus")
		return NewInProcess(watermillLogger), nil
	}

	opts, err := natsOptions(cfg)
	if err != nil {
		return nil, err
	}

	marshaler := &wmnats.NATSMarshaler{}
	jsConfig := wmnats.JetStreamConfig{Disabled: true}

	publisher, err := wmnats.NewPublisher(
		wmnats.PublisherConfig{
			URL:         cfg.URL,
			NatsOptions: opts,
			Marshaler:   marshaler,
			JetStream:   jsConfig,
		},
		watermillLogger,
	)
	if err != nil {
		logger.Error("Failed to create Watermill publisher", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(
		wmnats.SubscriberConfig{
			URL:              cfg.URL,
			QueueGroupPrefix: cfg.QueueGroup,
			SubscribersCount: 1,
			NatsOptions:      opts,
			Unmarshaler:      marshaler,
			JetStream:        jsConfig,
		},
		watermillLogger,
	)
	if err != nil {
		_ = publisher.Close()
		logger.Error("Failed to create Watermill subscriber", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	logger.Info("Connected event bus to NATS", slog.String("url", cfg.URL), slog.Bool("nkey_auth", cfg.NKeySeed != ""))
	return &EventBus{
		Publisher:  publisher,
		Subscriber: subscriber,
		closers:    []func() error{subscriber.Close, publisher.Close},
	}, nil
}

// NewInProcess returns a bus backed by a Go channel pub/sub.
func NewInProcess(logger watermill.LoggerAdapter) *EventBus {
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger)
	return &EventBus{
		Publisher:  pubsub,
		Subscriber: pubsub,
		closers:    []func() error{pubsub.Close},
	}
}

func natsOptions(cfg Config) ([]nc.Option, error) {
	opts := []nc.Option{
		nc.Name("cutline"),
		nc.RetryOnFailedConnect(true),
	}
	if cfg.NKeySeed == "" {
		return opts, nil
	}

	kp, err := nkeys.FromSeed([]byte(cfg.NKeySeed))
	if err != nil {
		return nil, fmt.Errorf("failed to parse nkey seed: %w", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive nkey public key: %w", err)
	}
	return append(opts, nc.Nkey(pub, kp.Sign)), nil
}

// Close closes the subscriber before the publisher.
func (b *EventBus) Close() error {
	var errs []error
	for _, c := range b.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
