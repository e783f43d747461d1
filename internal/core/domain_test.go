package core

import (
	"math"
	"testing"
	"time"
)

func TestListQueryNormalize(t *testing.T) {
	q := ListQuery{Page: 0, PerPage: 0, Search: "  widget "}.Normalize()
	if q.Page != DefaultPage || q.PerPage != DefaultPerPage || q.Search != "widget" {
		t.Fatalf("unexpected normalized query: %+v", q)
	}
	q = ListQuery{Page: 3, PerPage: 500}.Normalize()
	if q.PerPage != MaxPerPage {
		t.Fatalf("perPage not capped: %d", q.PerPage)
	}
	if got := (ListQuery{Page: 3, PerPage: 10}).Offset(); got != 20 {
		t.Fatalf("Offset = %d, want 20", got)
	}
}

func TestListQueryMatches(t *testing.T) {
	march := NewMonthRange(2023, 3)
	tx := Transaction{
		Title:       "Blue Widget",
		Description: "A sturdy gadget",
		Price:       25.5,
		DateOfSale:  time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	cases := []struct {
		name   string
		search string
		want   bool
	}{
		{"empty search", "", true},
		{"title case-insensitive", "WIDGET", true},
		{"description substring", "sturdy", true},
		{"price equality", "25.5", true},
		{"price substring does not match", "25", false},
		{"no match", "lamp", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := ListQuery{Range: march, Search: tc.search}.Normalize()
			if got := q.Matches(tx); got != tc.want {
				t.Fatalf("Matches = %v, want %v", got, tc.want)
			}
		})
	}

	april := ListQuery{Range: NewMonthRange(2023, 4)}.Normalize()
	if april.Matches(tx) {
		t.Fatalf("record matched outside its month")
	}
}

func TestListQueryHugePage(t *testing.T) {
	q := ListQuery{Page: math.MaxInt, PerPage: MaxPerPage}.Normalize()
	if q.Page != MaxPage {
		t.Fatalf("Page = %d, want %d", q.Page, MaxPage)
	}
	if off := q.Offset(); off <= 0 {
		t.Fatalf("Offset overflowed: %d", off)
	}

	raw := ListQuery{Page: 1_000_000_000_000_000_000, PerPage: 10}
	if off := raw.Offset(); off != math.MaxInt {
		t.Fatalf("un-normalized Offset = %d, want saturation", off)
	}
}
