// Package ui holds the client-side table state of the dashboard. The state is
// immutable: every transition returns a new value, and it round-trips through
// URL query parameters so htmx partials can re-render from it.
package ui

import (
	"net/url"
	"strconv"
	"strings"

	"salesboard/internal/core"
)

// DefaultMonth is the month selected when the page first loads.
const DefaultMonth = 3

// Transition names accepted in the "op" query parameter.
const (
	OpSearch = "search"
	OpMonth  = "month"
	OpNext   = "next"
	OpPrev   = "prev"
)

// TableState is what the transactions table displays.
type TableState struct {
	Search string
	Page   int
	Month  int
}

// Initial returns the state of a fresh page load.
func Initial() TableState {
	return TableState{Page: core.DefaultPage, Month: DefaultMonth}
}

// WithSearch changes the search text and returns to the first page.
func (s TableState) WithSearch(search string) TableState {
	s.Search = search
	s.Page = core.DefaultPage
	return s
}

// WithMonth changes the month and returns to the first page.
func (s TableState) WithMonth(month int) TableState {
	s.Month = month
	s.Page = core.DefaultPage
	return s
}

// Next moves one page forward. Pages past the last record render empty;
// only core.MaxPage stops it.
func (s TableState) Next() TableState {
	if s.Page < core.MaxPage {
		s.Page++
	}
	return s
}

// Prev moves one page back, staying on the first page.
func (s TableState) Prev() TableState {
	if s.Page > core.DefaultPage {
		s.Page--
	}
	return s
}

// HasPrev reports whether Prev would change the page.
func (s TableState) HasPrev() bool {
	return s.Page > core.DefaultPage
}

// Apply runs the named transition. The search text and month for OpSearch
// and OpMonth are taken from s itself, since the form submits them as the
// new values. Unknown ops leave the state unchanged.
func (s TableState) Apply(op string) TableState {
	switch op {
	case OpSearch:
		return s.WithSearch(s.Search)
	case OpMonth:
		return s.WithMonth(s.Month)
	case OpNext:
		return s.Next()
	case OpPrev:
		return s.Prev()
	}
	return s
}

// Query encodes the state as query parameters.
func (s TableState) Query() url.Values {
	v := url.Values{}
	v.Set("month", strconv.Itoa(s.Month))
	v.Set("page", strconv.Itoa(s.Page))
	if s.Search != "" {
		v.Set("search", s.Search)
	}
	return v
}

// FromQuery decodes a state. Missing or malformed values fall back to Initial.
func FromQuery(v url.Values) TableState {
	s := Initial()
	s.Search = strings.TrimSpace(v.Get("search"))
	if m, ok := core.ParseMonth(v.Get("month")); ok {
		s.Month = m
	}
	if p, err := strconv.Atoi(strings.TrimSpace(v.Get("page"))); err == nil && p >= core.DefaultPage {
		s.Page = min(p, core.MaxPage)
	}
	return s
}
