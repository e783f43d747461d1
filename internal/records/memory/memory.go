package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"salesboard/internal/core"
	"salesboard/internal/seed"
)

type entry struct {
	seq int64
	tx  core.Transaction
}

// Store keeps transactions in process memory. Useful for tests and demos.
type Store struct {
	mu    sync.Mutex
	next  int64
	items []entry
}

func New(txs ...core.Transaction) *Store {
	s := &Store{}
	_, _ = s.InsertMany(context.Background(), txs)
	return s
}

// NewFromFile seeds the store from a dataset file in the seed JSON format.
// A missing file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	txs, err := seed.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", path, err)
	}
	return New(txs...), nil
}

// InsertMany appends every transaction and assigns sequential ids.
func (s *Store) InsertMany(_ context.Context, txs []core.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range txs {
		s.next++
		tx.ID = strconv.FormatInt(s.next, 10)
		tx.DateOfSale = tx.DateOfSale.UTC()
		s.items = append(s.items, entry{seq: s.next, tx: tx})
	}
	return len(txs), nil
}

// List filters, orders by date of sale then insertion sequence, and pages.
func (s *Store) List(_ context.Context, q core.ListQuery) ([]core.Transaction, error) {
	q = q.Normalize()
	matched := s.filter(func(tx core.Transaction) bool { return q.Matches(tx) })
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.tx.DateOfSale.Equal(b.tx.DateOfSale) {
			return a.tx.DateOfSale.Before(b.tx.DateOfSale)
		}
		return a.seq < b.seq
	})

	off := q.Offset()
	if off >= len(matched) {
		return []core.Transaction{}, nil
	}
	end := off + q.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	out := make([]core.Transaction, 0, end-off)
	for _, e := range matched[off:end] {
		out = append(out, e.tx)
	}
	return out, nil
}

func (s *Store) Statistics(_ context.Context, r core.MonthRange) (core.Statistics, error) {
	var st core.Statistics
	sum := decimal.Zero
	for _, e := range s.filter(func(tx core.Transaction) bool { return r.Contains(tx.DateOfSale) }) {
		if e.tx.Sold {
			st.TotalSold++
			sum = sum.Add(decimal.NewFromFloat(e.tx.Price))
		} else {
			st.TotalNotSold++
		}
	}
	st.TotalSaleAmount = sum.InexactFloat64()
	return st, nil
}

func (s *Store) CountInPriceRange(_ context.Context, r core.MonthRange, p core.PriceRange) (int64, error) {
	matched := s.filter(func(tx core.Transaction) bool {
		return r.Contains(tx.DateOfSale) && p.Contains(tx.Price)
	})
	return int64(len(matched)), nil
}

func (s *Store) CategoryCounts(_ context.Context, r core.MonthRange) ([]core.CategoryCount, error) {
	counts := map[string]int64{}
	for _, e := range s.filter(func(tx core.Transaction) bool { return r.Contains(tx.DateOfSale) }) {
		counts[e.tx.Category]++
	}
	out := make([]core.CategoryCount, 0, len(counts))
	for cat, n := range counts {
		out = append(out, core.CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.items)), nil
}

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) filter(keep func(core.Transaction) bool) []entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entry
	for _, e := range s.items {
		if keep(e.tx) {
			out = append(out, e)
		}
	}
	return out
}
