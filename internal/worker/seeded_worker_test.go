package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"salesboard/internal/amqp"
)

type recordingInvalidator struct {
	mu      sync.Mutex
	reasons []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
}

type fakeConsumer struct {
	events []*amqp.SeededEvent
	err    error
	closed bool
}

func (f *fakeConsumer) ConsumeSeeded(ctx context.Context, h func(context.Context, *amqp.SeededEvent) error) error {
	for _, e := range f.events {
		if err := h(ctx, e); err != nil {
			return err
		}
	}
	return f.err
}

func (f *fakeConsumer) Close() error {
	f.closed = true
	return nil
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{15, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestHandleSeededInvalidates(t *testing.T) {
	inv := &recordingInvalidator{}
	w := NewSeededWorker(inv, nil)

	if err := w.HandleSeeded(context.Background(), &amqp.SeededEvent{ID: "abc", Inserted: 60}); err != nil {
		t.Fatalf("HandleSeeded: %v", err)
	}
	if len(inv.reasons) != 1 || inv.reasons[0] != "seeded event abc" {
		t.Fatalf("reasons = %v", inv.reasons)
	}
	if err := w.HandleSeeded(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil event")
	}
}

func TestRunReconnectsWithBackoff(t *testing.T) {
	inv := &recordingInvalidator{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var consumers []*fakeConsumer
	dials := 0
	dial := func() (SeededConsumer, error) {
		dials++
		switch dials {
		case 1:
			return nil, errors.New("connection refused")
		case 2:
			c := &fakeConsumer{events: []*amqp.SeededEvent{{ID: "e1"}}, err: amqp.ErrChannelClosed}
			consumers = append(consumers, c)
			return c, nil
		default:
			cancel()
			c := &fakeConsumer{err: context.Canceled}
			consumers = append(consumers, c)
			return c, nil
		}
	}

	w := NewSeededWorker(inv, dial)
	var delays []time.Duration
	w.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if dials != 3 {
		t.Fatalf("dials = %d, want 3", dials)
	}
	if len(delays) != 2 || delays[0] != time.Second || delays[1] != 2*time.Second {
		t.Fatalf("delays = %v", delays)
	}
	if len(inv.reasons) != 1 {
		t.Fatalf("invalidations = %v", inv.reasons)
	}
	for i, c := range consumers {
		if !c.closed {
			t.Errorf("consumer %d not closed", i)
		}
	}
}
