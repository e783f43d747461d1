package core

import "testing"

func TestParsePriceRanges(t *testing.T) {
	ranges, err := ParsePriceRanges("0-100, 101-200,901-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranges) != 3 {
		t.Fatalf("expected 3 ranges, got %d", len(ranges))
	}
	want := []string{"0-100", "101-200", "901-above"}
	for i, r := range ranges {
		if r.Label != want[i] {
			t.Errorf("range %d label = %q, want %q", i, r.Label, want[i])
		}
	}
	if !ranges[2].Open {
		t.Fatalf("last range should be open")
	}
}

func TestParsePriceRangesErrors(t *testing.T) {
	for _, spec := range []string{"", "abc", "10-5", "x-10", "0-y", "901-,0-100"} {
		if _, err := ParsePriceRanges(spec); err == nil {
			t.Errorf("ParsePriceRanges(%q) expected error", spec)
		}
	}
}

func TestPriceRangeContainsInclusiveBounds(t *testing.T) {
	ranges, err := ParsePriceRanges(DefaultPriceRanges)
	if err != nil {
		t.Fatalf("default ranges: %v", err)
	}
	cases := []struct {
		price float64
		idx   int
		in    bool
	}{
		{0, 0, true},
		{100, 0, true},
		{100.5, 0, false},
		{100.5, 1, false},
		{101, 1, true},
		{200, 1, true},
		{200.01, 1, false},
	}
	for _, tc := range cases {
		if got := ranges[tc.idx].Contains(tc.price); got != tc.in {
			t.Errorf("range %s Contains(%v) = %v, want %v", ranges[tc.idx].Label, tc.price, got, tc.in)
		}
	}
	open := PriceRange{Min: 901, Open: true}
	if !open.Contains(1e9) || open.Contains(900) {
		t.Fatalf("open range bounds wrong")
	}
}
