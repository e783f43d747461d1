package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"salesboard/internal/amqp"
)

// Invalidator drops state derived from the record store.
type Invalidator interface {
	Invalidate(ctx context.Context, reason string)
}

// SeededConsumer is a live subscription to seeded events.
type SeededConsumer interface {
	ConsumeSeeded(ctx context.Context, handler func(context.Context, *amqp.SeededEvent) error) error
	Close() error
}

// Dialer opens a new consumer connection.
type Dialer func() (SeededConsumer, error)

// SeededWorker clears the query caches whenever another process seeds the
// store. It reconnects with exponential backoff when the broker goes away.
type SeededWorker struct {
	invalidator Invalidator
	dial        Dialer
	sleep       func(context.Context, time.Duration) error
}

func NewSeededWorker(inv Invalidator, dial Dialer) *SeededWorker {
	return &SeededWorker{
		invalidator: inv,
		dial:        dial,
		sleep:       sleepContext,
	}
}

// HandleSeeded processes a single seeded event from AMQP.
func (w *SeededWorker) HandleSeeded(ctx context.Context, msg *amqp.SeededEvent) error {
	if msg == nil {
		return errors.New("nil seeded event")
	}
	slog.InfoContext(ctx, "Processing seeded event",
		"component", "worker",
		"event_id", msg.ID,
		"inserted", msg.Inserted,
		"source", msg.Source)

	w.invalidator.Invalidate(ctx, "seeded event "+msg.ID)
	return nil
}

// Run consumes until ctx is done. It returns nil on cancellation.
func (w *SeededWorker) Run(ctx context.Context) error {
	attempt := 0
	for {
		err := w.consumeOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			attempt = 0
			continue
		}

		delay := exponentialBackoff(attempt)
		slog.WarnContext(ctx, "Seeded event consumer stopped, reconnecting",
			"component", "worker",
			"error", err,
			"attempt", attempt+1,
			"retry_in", delay.String())
		attempt++
		if err := w.sleep(ctx, delay); err != nil {
			return nil
		}
	}
}

func (w *SeededWorker) consumeOnce(ctx context.Context) error {
	c, err := w.dial()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer c.Close()
	return c.ConsumeSeeded(ctx, w.HandleSeeded)
}

// exponentialBackoff returns 1s, 2s, 4s ... capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	const maxDelay = 30 * time.Second
	if attempt >= 5 {
		return maxDelay
	}
	return min(time.Second<<attempt, maxDelay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
