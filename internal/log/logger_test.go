package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewText(&buf, slog.LevelDebug, ComponentSeed)
	l.InfoContext(context.Background(), "seeded", FieldInserted, 60)

	out := buf.String()
	if !strings.Contains(out, "component=seed") || !strings.Contains(out, "inserted=60") {
		t.Fatalf("unexpected log line: %s", out)
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewText(&buf, slog.LevelWarn, ComponentApp)
	l.Info("hidden")
	l.Error("shown", FieldError, errors.New("boom").Error())

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line logged at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("error line missing: %s", out)
	}
}

func TestWithQueryOmitsZeroValues(t *testing.T) {
	f := NewFields().WithQuery(3, 0, 0, "")
	if f[FieldMonth] != 3 {
		t.Errorf("month = %v", f[FieldMonth])
	}
	for _, k := range []string{FieldPage, FieldPerPage, FieldSearch} {
		if _, ok := f[k]; ok {
			t.Errorf("unexpected field %s", k)
		}
	}
}

func TestMiddlewareStoresRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewText(&buf, slog.LevelInfo, ComponentHTTP)

	h := Middleware(l, func(*http.Request) string { return "req-42" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).InfoContext(r.Context(), "inside")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	out := buf.String()
	if !strings.Contains(out, "request_id=req-42") || !strings.Contains(out, "component=http") {
		t.Fatalf("request logger not used: %s", out)
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatal("expected fallback logger")
	}
}

func TestEvents(t *testing.T) {
	tests := []struct {
		name string
		emit func(ctx context.Context, e *Events)
		want []string
	}{
		{
			name: "seeded",
			emit: func(ctx context.Context, e *Events) { e.Seeded(ctx, "https://example.test/data.json", 60, 1500*time.Millisecond) },
			want: []string{"Database seeded", "component=seed", "inserted=60", "duration_ms=1500", "operation=seed"},
		},
		{
			name: "seed failed",
			emit: func(ctx context.Context, e *Events) { e.SeedFailed(ctx, "https://example.test", errors.New("status 502")) },
			want: []string{"level=ERROR", "Seeding failed", `error="status 502"`},
		},
		{
			name: "query failed",
			emit: func(ctx context.Context, e *Events) { e.QueryFailed(ctx, OpList, 3, 2, 10, "lamp", errors.New("offline")) },
			want: []string{"component=query", "operation=list", "month=3", "search=lamp", "error=offline"},
		},
		{
			name: "publish failed",
			emit: func(ctx context.Context, e *Events) { e.PublishFailed(ctx, "transactions.seeded", errors.New("closed")) },
			want: []string{"component=amqp", "routing_key=transactions.seeded"},
		},
		{
			name: "caches invalidated",
			emit: func(ctx context.Context, e *Events) { e.CachesInvalidated(ctx, "seed-database", 4) },
			want: []string{"component=cache", "reason=seed-database", "dropped=4"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewText(&buf, slog.LevelDebug, ComponentApp)
			ctx := NewContext(context.Background(), l)
			tt.emit(ctx, EventsFrom(ctx))

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("log line missing %q: %s", w, out)
				}
			}
			if n := strings.Count(out, "component="); n != 1 {
				t.Errorf("component logged %d times: %s", n, out)
			}
		})
	}
}

func TestRequestCompletedLevels(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "level=INFO"},
		{404, "level=WARN"},
		{503, "level=ERROR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		e := NewEvents(NewText(&buf, slog.LevelDebug, ComponentTrace))
		r := httptest.NewRequest(http.MethodGet, "/statistics?month=3", nil)
		e.RequestCompleted(context.Background(), r, tt.status, 12*time.Millisecond, "10.0.0.1")
		if out := buf.String(); !strings.Contains(out, tt.want) || !strings.Contains(out, "component=trace") {
			t.Errorf("status %d: %s", tt.status, out)
		}
	}
}
