// Package cache memoizes per-month aggregates between seed runs.
//
// Every MonthCache belongs to a Manager. Seeding calls Manager.Invalidate,
// which empties all caches and fences out loads that started before it.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	applog "salesboard/internal/log"
)

// DefaultSize bounds a MonthCache created with a non-positive size.
const DefaultSize = 64

// Stats is a snapshot of cache activity across a Manager.
type Stats struct {
	Hits          int64
	Misses        int64
	Invalidations int64
	Entries       int
}

// maintained is implemented by every MonthCache.
type maintained interface {
	CleanExpired() int
	Clear() int
	Len() int
}

// Manager owns the month caches of one process.
type Manager struct {
	mu     sync.Mutex
	caches []maintained

	generation    atomic.Uint64
	hits          atomic.Int64
	misses        atomic.Int64
	invalidations atomic.Int64

	stopCleanup chan struct{}
	cleanupDone chan struct{}
	started     bool
	stopOnce    sync.Once
}

func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

func (m *Manager) register(c maintained) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, c)
}

// Generation changes on every Invalidate.
func (m *Manager) Generation() uint64 {
	return m.generation.Load()
}

// Invalidate drops every cached aggregate. Results of loads that were in
// flight when it ran are not cached.
func (m *Manager) Invalidate(ctx context.Context, reason string) {
	m.generation.Add(1)
	m.invalidations.Add(1)

	m.mu.Lock()
	dropped := 0
	for _, c := range m.caches {
		dropped += c.Clear()
	}
	m.mu.Unlock()

	applog.EventsFrom(ctx).CachesInvalidated(ctx, reason, dropped)
}

// Stats reports hit and miss counts and the number of live entries.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	entries := 0
	for _, c := range m.caches {
		entries += c.Len()
	}
	m.mu.Unlock()

	return Stats{
		Hits:          m.hits.Load(),
		Misses:        m.misses.Load(),
		Invalidations: m.invalidations.Load(),
		Entries:       entries,
	}
}

// StartCleanup drops expired entries every interval until Stop.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			total := 0
			for _, c := range m.caches {
				total += c.CleanExpired()
			}
			m.mu.Unlock()
			if total > 0 {
				slog.Debug("Expired month aggregates dropped", applog.FieldComponent, applog.ComponentCache, applog.FieldDropped, total)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCleanup)
		m.mu.Lock()
		started := m.started
		m.mu.Unlock()
		if started {
			<-m.cleanupDone
		}
	})
}
