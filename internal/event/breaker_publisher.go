package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerPublisher stops calling the broker after repeated failures so a dead
// RabbitMQ does not add latency to every write request.
type BreakerPublisher struct {
	next EventPublisher
	cb   *gobreaker.CircuitBreaker
}

var _ EventPublisher = (*BreakerPublisher)(nil)

type BreakerSettings struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	MinRequests uint32
	FailureRate float64
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		MinRequests: 5,
		FailureRate: 0.6,
	}
}

func NewBreakerPublisher(next EventPublisher, settings BreakerSettings, logger *slog.Logger) *BreakerPublisher {
	if next == nil {
		next = NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "BreakerPublisher")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "event-publisher",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= settings.MinRequests && failureRatio >= settings.FailureRate
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Event publisher circuit changed state",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &BreakerPublisher{next: next, cb: cb}
}

func (b *BreakerPublisher) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerPublisher) PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error {
	return b.run(func() error { return b.next.PublishCustomerCreated(ctx, event) })
}

func (b *BreakerPublisher) PublishCustomerUpdated(ctx context.Context, event CustomerUpdatedEvent) error {
	return b.run(func() error { return b.next.PublishCustomerUpdated(ctx, event) })
}

func (b *BreakerPublisher) PublishCustomerDeleted(ctx context.Context, event CustomerDeletedEvent) error {
	return b.run(func() error { return b.next.PublishCustomerDeleted(ctx, event) })
}

func (b *BreakerPublisher) PublishCreditCreated(ctx context.Context, event CreditCreatedEvent) error {
	return b.run(func() error { return b.next.PublishCreditCreated(ctx, event) })
}

func (b *BreakerPublisher) run(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}
