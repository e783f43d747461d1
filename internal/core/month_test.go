package core

import (
	"testing"
	"time"
)

func TestNewMonthRangeBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		month int
		at    time.Time
		in    bool
	}{
		{"feb 28 included", 2, time.Date(2023, 2, 28, 23, 59, 59, 0, time.UTC), true},
		{"mar 1 excluded from feb", 2, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), false},
		{"jan 31 included", 1, time.Date(2023, 1, 31, 12, 0, 0, 0, time.UTC), true},
		{"apr 30 included", 4, time.Date(2023, 4, 30, 18, 0, 0, 0, time.UTC), true},
		{"may 1 excluded from apr", 4, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), false},
		{"dec 31 included", 12, time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC), true},
		{"first instant included", 3, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"previous year excluded", 3, time.Date(2022, 3, 15, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewMonthRange(2023, tc.month)
			if got := r.Contains(tc.at); got != tc.in {
				t.Fatalf("Contains(%v) = %v, want %v", tc.at, got, tc.in)
			}
		})
	}
}

func TestNewMonthRangeInvalidMonthIsEmpty(t *testing.T) {
	for _, m := range []int{0, 13, -1} {
		r := NewMonthRange(2023, m)
		if !r.IsEmpty() {
			t.Fatalf("month %d: expected empty range", m)
		}
		if r.Contains(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("month %d: empty range matched", m)
		}
	}
}

func TestParseMonth(t *testing.T) {
	cases := []struct {
		in  string
		out int
		ok  bool
	}{
		{"3", 3, true},
		{"03", 3, true},
		{" 12 ", 12, true},
		{"0", 0, false},
		{"13", 0, false},
		{"march", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseMonth(tc.in)
		if ok != tc.ok || got != tc.out {
			t.Fatalf("ParseMonth(%q) = %d,%v want %d,%v", tc.in, got, ok, tc.out, tc.ok)
		}
	}
}

func TestMonthRangeKey(t *testing.T) {
	if got := NewMonthRange(2023, 3).Key(); got != "2023-03" {
		t.Fatalf("Key = %q", got)
	}
	if got := NewMonthRange(2023, 0).Key(); got != "2023-invalid" {
		t.Fatalf("Key = %q", got)
	}
}
