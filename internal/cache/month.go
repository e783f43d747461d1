package cache

import (
	"container/list"
	"context"
	"log/slog"
	"sync"
	"time"

	"salesboard/internal/core"
	applog "salesboard/internal/log"
)

type monthKey struct {
	year, month int
}

func keyOf(r core.MonthRange) monthKey {
	return monthKey{year: r.Year, month: r.Month}
}

type monthEntry[V any] struct {
	key        monthKey
	value      V
	generation uint64
	expires    time.Time
}

// MonthCache keeps one aggregate of type V per month for ttl, holding at
// most size months and evicting the least recently read. A nil *MonthCache
// caches nothing.
type MonthCache[V any] struct {
	mu      sync.Mutex
	manager *Manager
	size    int
	ttl     time.Duration
	now     func() time.Time
	entries map[monthKey]*list.Element
	recency *list.List // front is the most recently read
}

func NewMonthCache[V any](m *Manager, size int, ttl time.Duration) *MonthCache[V] {
	if size <= 0 {
		size = DefaultSize
	}
	c := &MonthCache[V]{
		manager: m,
		size:    size,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[monthKey]*list.Element),
		recency: list.New(),
	}
	m.register(c)
	return c
}

// Load returns the aggregate cached for r, or calls load and caches what it
// returns. Errors and empty ranges are never cached.
func (c *MonthCache[V]) Load(ctx context.Context, r core.MonthRange, load func(context.Context) (V, error)) (V, error) {
	if c == nil || r.IsEmpty() {
		return load(ctx)
	}
	key := keyOf(r)
	if v, ok := c.get(key); ok {
		c.manager.hits.Add(1)
		return v, nil
	}
	c.manager.misses.Add(1)
	slog.DebugContext(ctx, "Month aggregate cache miss", applog.FieldComponent, applog.ComponentCache, applog.FieldMonth, r.Key())

	gen := c.manager.Generation()
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	c.put(key, v, gen)
	return v, nil
}

func (c *MonthCache[V]) get(key monthKey) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*monthEntry[V])
	if c.now().After(e.expires) || e.generation != c.manager.Generation() {
		c.remove(el)
		return zero, false
	}
	c.recency.MoveToFront(el)
	return e.value, true
}

// put stores v unless the manager was invalidated since gen was read.
func (c *MonthCache[V]) put(key monthKey, v V, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.manager.Generation() {
		return
	}
	e := &monthEntry[V]{key: key, value: v, generation: gen, expires: c.now().Add(c.ttl)}
	if el, ok := c.entries[key]; ok {
		el.Value = e
		c.recency.MoveToFront(el)
		return
	}
	c.entries[key] = c.recency.PushFront(e)
	for c.recency.Len() > c.size {
		c.remove(c.recency.Back())
	}
}

func (c *MonthCache[V]) remove(el *list.Element) {
	delete(c.entries, el.Value.(*monthEntry[V]).key)
	c.recency.Remove(el)
}

// CleanExpired drops entries past their ttl and returns how many it dropped.
func (c *MonthCache[V]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	dropped := 0
	for el := c.recency.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*monthEntry[V]).expires) {
			c.remove(el)
			dropped++
		}
		el = prev
	}
	return dropped
}

// Clear drops every entry and returns how many there were.
func (c *MonthCache[V]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[monthKey]*list.Element)
	c.recency.Init()
	return n
}

func (c *MonthCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
