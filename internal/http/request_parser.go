// Package http provides HTTP server and handler implementations.
//
// This file implements the query-string parsing shared by the REST and UI
// handlers. Malformed values never fail a request; they fall back to defaults.

package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"salesboard/internal/core"
)

// ListParams holds the parsed inputs of a transactions listing.
type ListParams struct {
	Month   int
	Page    int
	PerPage int
	Search  string
}

// ParseMonthParam returns the month query value. An absent or malformed
// month yields 0, which selects an empty range.
func ParseMonthParam(query url.Values) int {
	m, ok := core.ParseMonth(query.Get("month"))
	if !ok {
		return 0
	}
	return m
}

// ParseListParams extracts page, perPage, search and month.
func ParseListParams(query url.Values) ListParams {
	return ListParams{
		Month:   ParseMonthParam(query),
		Page:    parsePositiveInt(query.Get("page"), core.DefaultPage),
		PerPage: min(parsePositiveInt(query.Get("perPage"), core.DefaultPerPage), core.MaxPerPage),
		Search:  sanitizeInput(query.Get("search")),
	}
}

func parsePositiveInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 {
			return -1
		}
		return r
	}, s)
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequireGET is a convenience function for read-only handlers.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}
