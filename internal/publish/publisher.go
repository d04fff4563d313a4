// Package publish drains the engine's emitted events to a NATS subject via
// watermill, the "sink" spec.md calls out-of-scope but still needs a
// concrete, thin adapter.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/tradsys-lob/internal/events"
)

// Config holds the publisher's wiring.
type Config struct {
	NATSURL string
	Subject string
}

// Publisher drains events to a NATS subject, with a circuit breaker
// protecting the synchronous matching loop from a stalled sink (§5: the
// core never suspends — a Publish call must never block the caller
// waiting on a broken downstream).
type Publisher struct {
	pub     message.Publisher
	subject string
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// New builds a Publisher backed by a watermill NATS publisher.
func New(cfg Config, logger watermill.LoggerAdapter, zlog *zap.Logger) (*Publisher, error) {
	pub, err := nats.NewPublisher(nats.PublisherConfig{
		URL:       cfg.NATSURL,
		Marshaler: nats.GobMarshaler{},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("publish: new nats publisher: %w", err)
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "publish.nats",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
	})

	return &Publisher{pub: pub, subject: cfg.Subject, breaker: cb, logger: zlog}, nil
}

// Publish sends one event to the configured subject. A breaker trip or
// marshal failure is logged and swallowed: the matching loop that emitted
// the event must never be blocked or panicked by sink trouble.
func (p *Publisher) Publish(ev events.Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("publish: marshal failed", zap.Error(err), zap.String("kind", ev.Kind()))
		return
	}

	_, err = p.breaker.Execute(func() (interface{}, error) {
		msg := message.NewMessage(watermill.NewUUID(), body)
		return nil, p.pub.Publish(p.subject, msg)
	})
	if err != nil {
		p.logger.Warn("publish: dropped event", zap.Error(err), zap.String("kind", ev.Kind()))
	}
}

// PublishAll drains a batch in order, preserving the trade-then-depth
// ordering guarantee §5 requires downstream.
func (p *Publisher) PublishAll(evs []events.Event) {
	for _, ev := range evs {
		p.Publish(ev)
	}
}

// Close releases the underlying publisher.
func (p *Publisher) Close(ctx context.Context) error {
	return p.pub.Close()
}
