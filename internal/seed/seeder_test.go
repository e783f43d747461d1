package seed_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"salesboard/internal/core"
	applog "salesboard/internal/log"
	"salesboard/internal/records/memory"
	"salesboard/internal/seed"
)

const dataset = `[
  {"id":1,"title":"Fjallraven Backpack","price":109.95,"description":"Your perfect pack","category":"men's clothing","image":"https://example.com/1.jpg","sold":false,"dateOfSale":"2021-11-27T20:29:54+05:30"},
  {"id":2,"title":"Mens Casual T-Shirt","price":22.3,"description":"Slim-fitting style","category":"men's clothing","image":"https://example.com/2.jpg","sold":true,"dateOfSale":"2021-10-27T20:29:54+05:30"},
  {"id":3,"title":"Cotton Jacket","price":55.99,"description":"great outerwear","category":"men's clothing","image":"https://example.com/3.jpg","sold":true,"dateOfSale":"2022-03-27T20:29:54+05:30"}
]`

type fakeNotifier struct {
	calls    int
	inserted int
	err      error
}

func (f *fakeNotifier) PublishSeeded(_ context.Context, inserted int, _ string) error {
	f.calls++
	f.inserted = inserted
	return f.err
}

type failingStore struct{}

func (failingStore) InsertMany(context.Context, []core.Transaction) (int, error) {
	return 0, errors.New("disk full")
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSeedTwiceDuplicates(t *testing.T) {
	srv := serve(t, http.StatusOK, dataset)
	store := memory.New()
	notifier := &fakeNotifier{}
	s, err := seed.NewSeeder(srv.URL, store, seed.WithNotifier(notifier))
	if err != nil {
		t.Fatalf("NewSeeder: %v", err)
	}

	ctx := context.Background()
	res, err := s.Seed(ctx)
	if err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if res.Inserted != 3 || res.Source != srv.URL {
		t.Fatalf("unexpected result: %+v", res)
	}
	if n, _ := store.Count(ctx); n != 3 {
		t.Fatalf("Count after first seed = %d, want 3", n)
	}

	if _, err := s.Seed(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if n, _ := store.Count(ctx); n != 6 {
		t.Fatalf("Count after second seed = %d, want 6", n)
	}
	if notifier.calls != 2 || notifier.inserted != 3 {
		t.Fatalf("notifier calls=%d inserted=%d", notifier.calls, notifier.inserted)
	}
}

func TestSeedNormalizesDatesToUTC(t *testing.T) {
	srv := serve(t, http.StatusOK, dataset)
	store := memory.New()
	s, _ := seed.NewSeeder(srv.URL, store)
	if _, err := s.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// 2021-11-27T20:29:54+05:30 is 14:59:54 UTC.
	got, err := store.List(context.Background(), core.ListQuery{Range: core.NewMonthRange(2021, 11)})
	if err != nil || len(got) != 1 {
		t.Fatalf("List: %v (%d records)", err, len(got))
	}
	if h := got[0].DateOfSale.UTC().Hour(); h != 14 {
		t.Fatalf("hour = %d, want 14", h)
	}
	if got[0].Image == "" {
		t.Fatalf("image not carried over")
	}
}

func TestSeedErrors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		srv := serve(t, http.StatusServiceUnavailable, "maintenance")
		s, _ := seed.NewSeeder(srv.URL, memory.New())
		_, err := s.Seed(context.Background())
		var httpErr *seed.HTTPError
		if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("expected HTTPError 503, got %v", err)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := serve(t, http.StatusOK, `{"oops":true}`)
		s, _ := seed.NewSeeder(srv.URL, memory.New())
		if _, err := s.Seed(context.Background()); err == nil {
			t.Fatalf("expected decode error")
		}
	})

	t.Run("insert failure", func(t *testing.T) {
		srv := serve(t, http.StatusOK, dataset)
		notifier := &fakeNotifier{}
		s, _ := seed.NewSeeder(srv.URL, failingStore{}, seed.WithNotifier(notifier))
		_, err := s.Seed(context.Background())
		if err == nil || !strings.Contains(err.Error(), "disk full") {
			t.Fatalf("expected insert error, got %v", err)
		}
		if notifier.calls != 0 {
			t.Fatalf("notifier called after failed insert")
		}
	})

	t.Run("unreachable source", func(t *testing.T) {
		srv := serve(t, http.StatusOK, dataset)
		url := srv.URL
		srv.Close()
		s, _ := seed.NewSeeder(url, memory.New())
		if _, err := s.Seed(context.Background()); err == nil {
			t.Fatalf("expected network error")
		}
	})

	t.Run("notifier failure is not fatal", func(t *testing.T) {
		srv := serve(t, http.StatusOK, dataset)
		s, _ := seed.NewSeeder(srv.URL, memory.New(), seed.WithNotifier(&fakeNotifier{err: errors.New("broker down")}))
		if _, err := s.Seed(context.Background()); err != nil {
			t.Fatalf("seed should succeed, got %v", err)
		}
	})
}

func TestNewSeederValidation(t *testing.T) {
	if _, err := seed.NewSeeder("", memory.New()); err == nil {
		t.Fatalf("expected error for empty URL")
	}
	if _, err := seed.NewSeeder("http://example.com", nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
}

func TestSeedStoresIncompleteRecords(t *testing.T) {
	srv := serve(t, http.StatusOK, `[
  {"title":"ok","price":5,"dateOfSale":"2023-03-02T00:00:00Z"},
  {"title":"","price":-1,"dateOfSale":"2023-03-03T00:00:00Z"},
  {"description":"no title, no date"}
]`)
	store := memory.New()
	s, err := seed.NewSeeder(srv.URL, store)
	if err != nil {
		t.Fatalf("NewSeeder: %v", err)
	}
	res, err := s.Seed(context.Background())
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n, _ := store.Count(context.Background()); res.Inserted != 3 || n != 3 {
		t.Fatalf("inserted=%d stored=%d, want 3", res.Inserted, n)
	}
}

func TestSeedLogsOneLinePerOutcome(t *testing.T) {
	srv := serve(t, http.StatusOK, dataset)
	var buf bytes.Buffer
	ctx := applog.NewContext(context.Background(), applog.NewText(&buf, slog.LevelDebug, "cli"))

	s, err := seed.NewSeeder(srv.URL, memory.New(), seed.WithNotifier(&fakeNotifier{err: errors.New("broker down")}))
	if err != nil {
		t.Fatalf("NewSeeder: %v", err)
	}
	if _, err := s.Seed(ctx); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	var seeded, failed []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		switch {
		case strings.Contains(line, "Database seeded"):
			seeded = append(seeded, line)
		case strings.Contains(line, "Failed to publish event"):
			failed = append(failed, line)
		}
	}
	if len(seeded) != 1 || len(failed) != 1 {
		t.Fatalf("seeded=%d publish failures=%d in\n%s", len(seeded), len(failed), buf.String())
	}
	for _, want := range []string{"component=seed", "inserted=3"} {
		if !strings.Contains(seeded[0], want) {
			t.Errorf("seed line %q missing %s", seeded[0], want)
		}
	}
	if strings.Count(seeded[0], "component=") != 1 {
		t.Errorf("seed line repeats component: %q", seeded[0])
	}
	if !strings.Contains(failed[0], "routing_key="+seed.RoutingKeySeeded) {
		t.Errorf("publish failure line %q lacks routing key", failed[0])
	}
}
