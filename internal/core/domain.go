package core

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100

	// MaxPage keeps (page-1)*perPage representable as an int.
	MaxPage = math.MaxInt / MaxPerPage
)

type (
	// Transaction is a single product sale record.
	Transaction struct {
		ID          string
		Title       string
		Description string
		Price       float64
		Category    string
		Image       string
		Sold        bool
		DateOfSale  time.Time
	}

	// ListQuery selects one page of transactions within a month.
	ListQuery struct {
		Range   MonthRange
		Search  string
		Page    int
		PerPage int
	}
)

// Normalize clamps paging values to their defaults and bounds.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Offset returns the number of matching records skipped before the page.
// It saturates instead of overflowing on queries that skipped Normalize.
func (q ListQuery) Offset() int {
	if q.Page <= 1 || q.PerPage <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.PerPage {
		return math.MaxInt
	}
	return (q.Page - 1) * q.PerPage
}

// SearchPrice reports the search term as a price when it is numeric.
// Price matches on equality only; text fields match on substrings.
func (q ListQuery) SearchPrice() (float64, bool) {
	if q.Search == "" {
		return 0, false
	}
	p, err := strconv.ParseFloat(q.Search, 64)
	if err != nil {
		return 0, false
	}
	return p, true
}

// Matches reports whether t satisfies the month and search filters.
func (q ListQuery) Matches(t Transaction) bool {
	if !q.Range.Contains(t.DateOfSale) {
		return false
	}
	if q.Search == "" {
		return true
	}
	needle := strings.ToLower(q.Search)
	if strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle) {
		return true
	}
	if p, ok := q.SearchPrice(); ok && p == t.Price {
		return true
	}
	return false
}
