// Package seed loads the external transaction dataset into the Record Store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"salesboard/internal/core"
	applog "salesboard/internal/log"
	"salesboard/internal/records"
)

// DefaultURL is the public dataset the application was built around.
const DefaultURL = "https://s3.amazonaws.com/roxiler.com/product_transaction.json"

const maxBodyBytes = 32 << 20

// RoutingKeySeeded names the event a Notifier publishes.
const RoutingKeySeeded = "transactions.seeded"

// Notifier is told about every completed seed run.
type Notifier interface {
	PublishSeeded(ctx context.Context, inserted int, source string) error
}

// Result describes one seed run.
type Result struct {
	Inserted int
	Source   string
	Duration time.Duration
}

// Option configures a Seeder.
type Option func(*Seeder)

// WithHTTPClient overrides the HTTP client used to fetch the dataset.
func WithHTTPClient(h *http.Client) Option {
	return func(s *Seeder) {
		if h != nil {
			s.client = h
		}
	}
}

// WithNotifier publishes a seeded event after each successful run.
func WithNotifier(n Notifier) Option {
	return func(s *Seeder) {
		s.notifier = n
	}
}

// Seeder fetches the dataset and bulk-inserts it. It never deduplicates:
// running it twice stores every record twice.
type Seeder struct {
	url      string
	client   *http.Client
	store    records.Inserter
	notifier Notifier
}

func NewSeeder(url string, store records.Inserter, opts ...Option) (*Seeder, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("seed: source URL is required")
	}
	if store == nil {
		return nil, errors.New("seed: store is required")
	}
	s := &Seeder{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
		store:  store,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Seed runs one fetch-and-insert cycle.
func (s *Seeder) Seed(ctx context.Context) (Result, error) {
	start := time.Now()
	res := Result{Source: s.url}

	txs, err := s.fetch(ctx)
	if err != nil {
		return res, err
	}

	n, err := s.store.InsertMany(ctx, txs)
	if err != nil {
		return res, fmt.Errorf("insert transactions: %w", err)
	}
	res.Inserted = n
	res.Duration = time.Since(start)

	events := applog.EventsFrom(ctx)
	events.Seeded(ctx, s.url, n, res.Duration)

	if s.notifier != nil {
		if err := s.notifier.PublishSeeded(ctx, n, s.url); err != nil {
			events.PublishFailed(ctx, RoutingKeySeeded, err)
		}
	}
	return res, nil
}

func (s *Seeder) fetch(ctx context.Context) ([]core.Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build dataset request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: body}
	}

	return Decode(io.LimitReader(resp.Body, maxBodyBytes))
}
