// Package records defines the Record Store port shared by every backend.
package records

import (
	"context"

	"salesboard/internal/core"
)

// Ports for outbound adapters.
type (
	// Inserter bulk-loads transactions. Records are always added, never merged.
	Inserter interface {
		InsertMany(ctx context.Context, txs []core.Transaction) (int, error)
	}

	// Lister returns one page of matching transactions ordered by date of sale then id.
	Lister interface {
		List(ctx context.Context, q core.ListQuery) ([]core.Transaction, error)
	}

	// Aggregator answers the per-month aggregate queries.
	Aggregator interface {
		// Statistics returns sold/unsold counts and the sold price sum.
		Statistics(ctx context.Context, r core.MonthRange) (core.Statistics, error)
		// CountInPriceRange counts month records whose price falls in p.
		CountInPriceRange(ctx context.Context, r core.MonthRange, p core.PriceRange) (int64, error)
		// CategoryCounts groups month records by category, sorted by category.
		CategoryCounts(ctx context.Context, r core.MonthRange) ([]core.CategoryCount, error)
	}

	// Store is the full Record Store.
	Store interface {
		Inserter
		Lister
		Aggregator
		// Count returns the total number of stored records.
		Count(ctx context.Context) (int64, error)
		// Ping checks the store is reachable.
		Ping(ctx context.Context) error
	}
)
