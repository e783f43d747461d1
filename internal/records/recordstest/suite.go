// Package recordstest holds a behaviour suite every records.Store must pass.
package recordstest

import (
	"context"
	"math"
	"testing"
	"time"

	"salesboard/internal/core"
	"salesboard/internal/records"
)

// Year is the filter year used by the fixtures.
const Year = 2023

func at(y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, time.UTC)
}

// Fixtures returns a dataset spanning month boundaries, a prior year and
// prices outside the default bar chart buckets.
func Fixtures() []core.Transaction {
	return []core.Transaction{
		{Title: "Blue Widget", Description: "a small widget", Price: 50, Category: "electronics", Sold: true, DateOfSale: at(2023, 3, 1, 0, 0, 0)},
		{Title: "Red Lamp", Description: "bright WIDGET lamp", Price: 150, Category: "home", Sold: false, DateOfSale: at(2023, 3, 15, 10, 0, 0)},
		{Title: "Green Shirt", Description: "cotton", Price: 250, Category: "clothing", Sold: true, DateOfSale: at(2023, 3, 31, 23, 0, 0)},
		{Title: "Yellow Hat", Description: "straw", Price: 100.5, Category: "clothing", Sold: true, DateOfSale: at(2023, 3, 20, 8, 30, 0)},
		{Title: "Feb Item", Description: "late february", Price: 80, Category: "home", Sold: true, DateOfSale: at(2023, 2, 28, 12, 0, 0)},
		{Title: "Gadget", Description: "end of january", Price: 10, Category: "electronics", Sold: false, DateOfSale: at(2023, 1, 31, 23, 59, 59)},
		{Title: "Old Widget", Description: "widget from last year", Price: 20, Category: "electronics", Sold: true, DateOfSale: at(2022, 3, 10, 0, 0, 0)},
		{Title: "Tie Break", Description: "same instant as the blue one", Price: 60, Category: "home", Sold: false, DateOfSale: at(2023, 3, 1, 0, 0, 0)},
	}
}

// Run exercises newStore against the Record Store contract. newStore must
// return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) records.Store) {
	t.Helper()
	ctx := context.Background()

	seeded := func(t *testing.T) records.Store {
		t.Helper()
		s := newStore(t)
		n, err := s.InsertMany(ctx, Fixtures())
		if err != nil {
			t.Fatalf("InsertMany: %v", err)
		}
		if n != len(Fixtures()) {
			t.Fatalf("InsertMany inserted %d, want %d", n, len(Fixtures()))
		}
		return s
	}
	march := core.NewMonthRange(Year, 3)

	t.Run("InsertTwiceDuplicates", func(t *testing.T) {
		s := seeded(t)
		if _, err := s.InsertMany(ctx, Fixtures()); err != nil {
			t.Fatalf("second InsertMany: %v", err)
		}
		n, err := s.Count(ctx)
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if want := int64(2 * len(Fixtures())); n != want {
			t.Fatalf("Count = %d, want %d", n, want)
		}
	})

	t.Run("InsertKeepsSparseRecords", func(t *testing.T) {
		s := newStore(t)
		batch := []core.Transaction{
			{Title: "ok", Price: 10, DateOfSale: at(2023, 5, 2, 0, 0, 0)},
			{Title: "", Price: -1, DateOfSale: at(2023, 5, 3, 0, 0, 0)},
			{Title: "undated"},
		}
		n, err := s.InsertMany(ctx, batch)
		if err != nil {
			t.Fatalf("InsertMany: %v", err)
		}
		if n != len(batch) {
			t.Fatalf("inserted %d, want %d", n, len(batch))
		}
		got, err := s.List(ctx, core.ListQuery{Range: core.NewMonthRange(Year, 5)})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		assertTitles(t, got, []string{"ok", ""})
		if got[1].Price != -1 {
			t.Fatalf("negative price not kept: %v", got[1].Price)
		}
	})

	t.Run("ListFiltersMonthAndOrders", func(t *testing.T) {
		s := seeded(t)
		got, err := s.List(ctx, core.ListQuery{Range: march, PerPage: core.MaxPerPage})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		want := []string{"Blue Widget", "Tie Break", "Red Lamp", "Yellow Hat", "Green Shirt"}
		assertTitles(t, got, want)
		for _, tx := range got {
			if !march.Contains(tx.DateOfSale) {
				t.Errorf("%s outside March: %v", tx.Title, tx.DateOfSale)
			}
			if tx.ID == "" {
				t.Errorf("%s has no id", tx.Title)
			}
		}
	})

	t.Run("ListShortMonthBoundary", func(t *testing.T) {
		s := seeded(t)
		feb, err := s.List(ctx, core.ListQuery{Range: core.NewMonthRange(Year, 2), PerPage: core.MaxPerPage})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		assertTitles(t, feb, []string{"Feb Item"})

		jan, err := s.List(ctx, core.ListQuery{Range: core.NewMonthRange(Year, 1), PerPage: core.MaxPerPage})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		assertTitles(t, jan, []string{"Gadget"})
	})

	t.Run("ListPagination", func(t *testing.T) {
		s := seeded(t)
		full, err := s.List(ctx, core.ListQuery{Range: march, PerPage: core.MaxPerPage})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		const size = 2
		for page := 1; page <= 4; page++ {
			got, err := s.List(ctx, core.ListQuery{Range: march, Page: page, PerPage: size})
			if err != nil {
				t.Fatalf("List page %d: %v", page, err)
			}
			lo := (page - 1) * size
			hi := lo + size
			if lo > len(full) {
				lo = len(full)
			}
			if hi > len(full) {
				hi = len(full)
			}
			want := make([]string, 0, hi-lo)
			for _, tx := range full[lo:hi] {
				want = append(want, tx.Title)
			}
			assertTitles(t, got, want)
		}
	})

	t.Run("ListHugePageIsEmpty", func(t *testing.T) {
		s := seeded(t)
		for _, page := range []int{1_000_000_000_000_000_000, math.MaxInt} {
			got, err := s.List(ctx, core.ListQuery{Range: march, Page: page, PerPage: core.DefaultPerPage})
			if err != nil {
				t.Fatalf("List page %d: %v", page, err)
			}
			assertTitles(t, got, nil)
		}
	})

	t.Run("ListSearch", func(t *testing.T) {
		s := seeded(t)
		got, err := s.List(ctx, core.ListQuery{Range: march, Search: "widget", PerPage: core.MaxPerPage})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		assertTitles(t, got, []string{"Blue Widget", "Red Lamp"})

		got, err = s.List(ctx, core.ListQuery{Range: march, Search: "150", PerPage: core.MaxPerPage})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		assertTitles(t, got, []string{"Red Lamp"})

		got, err = s.List(ctx, core.ListQuery{Range: march, Search: "100%", PerPage: core.MaxPerPage})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		assertTitles(t, got, nil)
	})

	t.Run("ListInvalidMonthIsEmpty", func(t *testing.T) {
		s := seeded(t)
		got, err := s.List(ctx, core.ListQuery{Range: core.NewMonthRange(Year, 0)})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no records, got %d", len(got))
		}
	})

	t.Run("Statistics", func(t *testing.T) {
		s := seeded(t)
		st, err := s.Statistics(ctx, march)
		if err != nil {
			t.Fatalf("Statistics: %v", err)
		}
		if st.TotalSold != 3 || st.TotalNotSold != 2 {
			t.Fatalf("counts = %d/%d, want 3/2", st.TotalSold, st.TotalNotSold)
		}
		if st.TotalSold+st.TotalNotSold != 5 {
			t.Fatalf("sold+notSold != month total")
		}
		if st.TotalSaleAmount != 400.5 {
			t.Fatalf("TotalSaleAmount = %v, want 400.5", st.TotalSaleAmount)
		}

		empty, err := s.Statistics(ctx, core.NewMonthRange(Year, 7))
		if err != nil {
			t.Fatalf("Statistics: %v", err)
		}
		if empty != (core.Statistics{}) {
			t.Fatalf("expected zero statistics, got %+v", empty)
		}
	})

	t.Run("CountInPriceRange", func(t *testing.T) {
		s := seeded(t)
		ranges, err := core.ParsePriceRanges(core.DefaultPriceRanges + ",201-")
		if err != nil {
			t.Fatalf("ParsePriceRanges: %v", err)
		}
		want := []int64{2, 1, 1}
		var total int64
		for i, pr := range ranges {
			n, err := s.CountInPriceRange(ctx, march, pr)
			if err != nil {
				t.Fatalf("CountInPriceRange %s: %v", pr.Label, err)
			}
			if n != want[i] {
				t.Errorf("range %s = %d, want %d", pr.Label, n, want[i])
			}
			total += n
		}
		// Yellow Hat at 100.5 sits between the first two buckets.
		if total != 4 {
			t.Fatalf("bucket total = %d, want 4", total)
		}
	})

	t.Run("CategoryCounts", func(t *testing.T) {
		s := seeded(t)
		got, err := s.CategoryCounts(ctx, march)
		if err != nil {
			t.Fatalf("CategoryCounts: %v", err)
		}
		want := []core.CategoryCount{
			{Category: "clothing", Count: 2},
			{Category: "electronics", Count: 1},
			{Category: "home", Count: 2},
		}
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		var sum int64
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("category %d = %+v, want %+v", i, got[i], want[i])
			}
			sum += got[i].Count
		}
		if sum != 5 {
			t.Fatalf("category total = %d, want 5", sum)
		}
	})

	t.Run("Ping", func(t *testing.T) {
		if err := newStore(t).Ping(ctx); err != nil {
			t.Fatalf("Ping: %v", err)
		}
	})
}

func assertTitles(t *testing.T, got []core.Transaction, want []string) {
	t.Helper()
	if len(got) != len(want) {
		titles := make([]string, len(got))
		for i, tx := range got {
			titles[i] = tx.Title
		}
		t.Fatalf("got %v, want %v", titles, want)
	}
	for i := range want {
		if got[i].Title != want[i] {
			t.Fatalf("position %d = %q, want %q", i, got[i].Title, want[i])
		}
	}
}
