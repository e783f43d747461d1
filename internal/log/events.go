package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Events writes the application's recurring log lines: request lifecycle,
// seed runs, failed queries and cache invalidation.
type Events struct {
	logger *Logger
}

func NewEvents(logger *Logger) *Events {
	return &Events{logger: logger}
}

// EventsFrom logs through the request logger in ctx.
func EventsFrom(ctx context.Context) *Events {
	return NewEvents(FromContext(ctx))
}

func (e *Events) RequestStarted(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithClientIP(clientIP)

	e.logger.DebugContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// RequestCompleted logs at warn for 4xx and error for 5xx.
func (e *Events) RequestCompleted(ctx context.Context, r *http.Request, status int, elapsed time.Duration, clientIP string) {
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(status, elapsed.Milliseconds(), status < 400).
		WithClientIP(clientIP).
		WithComponent(e.logger.Component())

	e.logger.Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

func (e *Events) Seeded(ctx context.Context, source string, inserted int, elapsed time.Duration) {
	fields := NewFields().
		WithOperation(OpSeed).
		WithSeed(source, inserted)
	fields[FieldDuration] = elapsed.Milliseconds()

	e.logger.WithComponent(ComponentSeed).InfoContext(ctx, "Database seeded", fields.ToSlice()...)
}

func (e *Events) SeedFailed(ctx context.Context, source string, err error) {
	fields := NewFields().
		WithOperation(OpSeed).
		WithSeed(source, 0).
		WithError(err)

	e.logger.WithComponent(ComponentSeed).ErrorContext(ctx, "Seeding failed", fields.ToSlice()...)
}

// PublishFailed reports an event that could not reach the broker. The
// records it describes are already stored.
func (e *Events) PublishFailed(ctx context.Context, routingKey string, err error) {
	fields := NewFields().WithError(err)
	fields[FieldRoutingKey] = routingKey

	e.logger.WithComponent(ComponentAMQP).ErrorContext(ctx, "Failed to publish event", fields.ToSlice()...)
}

func (e *Events) QueryFailed(ctx context.Context, op string, month, page, perPage int, search string, err error) {
	fields := NewFields().
		WithQuery(month, page, perPage, search).
		WithOperation(op).
		WithError(err)

	e.logger.WithComponent(ComponentQuery).ErrorContext(ctx, "Query failed", fields.ToSlice()...)
}

func (e *Events) CachesInvalidated(ctx context.Context, reason string, dropped int) {
	fields := NewFields()
	fields[FieldReason] = reason
	fields[FieldDropped] = dropped

	e.logger.WithComponent(ComponentCache).InfoContext(ctx, "Query caches invalidated", fields.ToSlice()...)
}
