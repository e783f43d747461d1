package core

import (
	"fmt"
	"strconv"
	"strings"
)

// PriceRange is an inclusive price bucket. Open ranges have no upper bound.
type PriceRange struct {
	Label string
	Min   float64
	Max   float64
	Open  bool
}

// DefaultPriceRanges are the buckets used when none are configured.
const DefaultPriceRanges = "0-100,101-200"

// Contains reports whether price falls inside the bucket.
func (p PriceRange) Contains(price float64) bool {
	if price < p.Min {
		return false
	}
	return p.Open || price <= p.Max
}

// ParsePriceRanges parses a comma separated list such as "0-100,101-200,901-".
// A trailing dash marks the last bucket as open ended.
func ParsePriceRanges(spec string) ([]PriceRange, error) {
	var out []PriceRange
	for _, raw := range strings.Split(spec, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		lo, hi, found := strings.Cut(raw, "-")
		if !found {
			return nil, fmt.Errorf("price range %q: missing '-'", raw)
		}
		min, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		if err != nil {
			return nil, fmt.Errorf("price range %q: invalid lower bound: %w", raw, err)
		}
		pr := PriceRange{Min: min}
		hi = strings.TrimSpace(hi)
		if hi == "" {
			pr.Open = true
			pr.Label = strconv.FormatFloat(min, 'f', -1, 64) + "-above"
		} else {
			max, err := strconv.ParseFloat(hi, 64)
			if err != nil {
				return nil, fmt.Errorf("price range %q: invalid upper bound: %w", raw, err)
			}
			if max < min {
				return nil, fmt.Errorf("price range %q: upper bound below lower bound", raw)
			}
			pr.Max = max
			pr.Label = strconv.FormatFloat(min, 'f', -1, 64) + "-" + strconv.FormatFloat(max, 'f', -1, 64)
		}
		if n := len(out); n > 0 && out[n-1].Open {
			return nil, fmt.Errorf("price range %q follows an open range", raw)
		}
		out = append(out, pr)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no price ranges in %q", spec)
	}
	return out, nil
}
