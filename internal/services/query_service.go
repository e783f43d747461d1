package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"salesboard/internal/cache"
	"salesboard/internal/core"
	"salesboard/internal/records"
)

// QueryConfig tunes the QueryService.
type QueryConfig struct {
	// Year fixes the calendar year every month filter applies to.
	Year int
	// PriceRanges are the bar chart buckets, in display order.
	PriceRanges []core.PriceRange
	// CacheSize and CacheTTL bound the per-month aggregate caches.
	// A zero TTL disables caching.
	CacheSize int
	CacheTTL  time.Duration
}

// QueryService answers the read-only listing and aggregate queries.
type QueryService struct {
	store  records.Store
	year   int
	ranges []core.PriceRange

	caches *cache.Manager
	stats  *cache.MonthCache[core.Statistics]
	bars   *cache.MonthCache[[]core.BarBucket]
	pies   *cache.MonthCache[[]core.CategoryCount]
}

func NewQueryService(store records.Store, cfg QueryConfig) *QueryService {
	s := &QueryService{
		store:  store,
		year:   cfg.Year,
		ranges: cfg.PriceRanges,
		caches: cache.NewManager(),
	}
	if len(s.ranges) == 0 {
		s.ranges, _ = core.ParsePriceRanges(core.DefaultPriceRanges)
	}
	if cfg.CacheTTL > 0 {
		s.stats = cache.NewMonthCache[core.Statistics](s.caches, cfg.CacheSize, cfg.CacheTTL)
		s.bars = cache.NewMonthCache[[]core.BarBucket](s.caches, cfg.CacheSize, cfg.CacheTTL)
		s.pies = cache.NewMonthCache[[]core.CategoryCount](s.caches, cfg.CacheSize, cfg.CacheTTL)
		s.caches.StartCleanup(10 * time.Minute)
	}
	return s
}

// Year returns the fixed filter year.
func (s *QueryService) Year() int {
	return s.year
}

// PriceRanges returns the configured bar chart buckets.
func (s *QueryService) PriceRanges() []core.PriceRange {
	return append([]core.PriceRange(nil), s.ranges...)
}

// MonthRange maps a 1-12 month to its range in the fixed year.
func (s *QueryService) MonthRange(month int) core.MonthRange {
	return core.NewMonthRange(s.year, month)
}

// List returns one page of matching transactions.
func (s *QueryService) List(ctx context.Context, month, page, perPage int, search string) ([]core.Transaction, error) {
	q := core.ListQuery{
		Range:   s.MonthRange(month),
		Search:  search,
		Page:    page,
		PerPage: perPage,
	}.Normalize()

	txs, err := s.store.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list transactions (month=%d, page=%d): %w", month, q.Page, err)
	}
	return txs, nil
}

// Statistics returns the sold/unsold summary for month.
func (s *QueryService) Statistics(ctx context.Context, month int) (core.Statistics, error) {
	r := s.MonthRange(month)
	st, err := s.stats.Load(ctx, r, func(ctx context.Context) (core.Statistics, error) {
		return s.store.Statistics(ctx, r)
	})
	if err != nil {
		return core.Statistics{}, fmt.Errorf("statistics (month=%d): %w", month, err)
	}
	return st, nil
}

// BarChart counts month records per configured price range, in range order.
func (s *QueryService) BarChart(ctx context.Context, month int) ([]core.BarBucket, error) {
	r := s.MonthRange(month)
	buckets, err := s.bars.Load(ctx, r, func(ctx context.Context) ([]core.BarBucket, error) {
		return s.countBuckets(ctx, r)
	})
	if err != nil {
		return nil, fmt.Errorf("bar chart (month=%d): %w", month, err)
	}
	return slices.Clone(buckets), nil
}

func (s *QueryService) countBuckets(ctx context.Context, r core.MonthRange) ([]core.BarBucket, error) {
	buckets := make([]core.BarBucket, len(s.ranges))
	g, gctx := errgroup.WithContext(ctx)
	for i, pr := range s.ranges {
		g.Go(func() error {
			n, err := s.store.CountInPriceRange(gctx, r, pr)
			if err != nil {
				return err
			}
			buckets[i] = core.BarBucket{Range: pr.Label, Count: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return buckets, nil
}

// PieChart groups month records by category.
func (s *QueryService) PieChart(ctx context.Context, month int) ([]core.CategoryCount, error) {
	r := s.MonthRange(month)
	counts, err := s.pies.Load(ctx, r, func(ctx context.Context) ([]core.CategoryCount, error) {
		return s.store.CategoryCounts(ctx, r)
	})
	if err != nil {
		return nil, fmt.Errorf("pie chart (month=%d): %w", month, err)
	}
	return slices.Clone(counts), nil
}

// Combined fetches the first page and every aggregate for month concurrently.
func (s *QueryService) Combined(ctx context.Context, month int) (core.Combined, error) {
	var out core.Combined
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Transactions, err = s.List(gctx, month, core.DefaultPage, core.DefaultPerPage, "")
		return err
	})
	g.Go(func() (err error) {
		out.Statistics, err = s.Statistics(gctx, month)
		return err
	})
	g.Go(func() (err error) {
		out.BarChart, err = s.BarChart(gctx, month)
		return err
	})
	g.Go(func() (err error) {
		out.PieChart, err = s.PieChart(gctx, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Combined{}, err
	}
	return out, nil
}

// Invalidate drops every cached aggregate. Called after the store changes.
func (s *QueryService) Invalidate(ctx context.Context, reason string) {
	s.caches.Invalidate(ctx, reason)
}

// CacheStats reports aggregate cache activity.
func (s *QueryService) CacheStats() cache.Stats {
	return s.caches.Stats()
}

// Ready reports whether the store is reachable.
func (s *QueryService) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close stops background cache maintenance.
func (s *QueryService) Close() error {
	s.caches.Stop()
	return nil
}
