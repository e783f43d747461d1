package http

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"salesboard/internal/core"
)

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// monthOption is one entry of the month selector.
type monthOption struct {
	Value    int
	Name     string
	Selected bool
}

func monthOptions(selected int) []monthOption {
	out := make([]monthOption, len(monthNames))
	for i, n := range monthNames {
		out[i] = monthOption{Value: i + 1, Name: n, Selected: i+1 == selected}
	}
	return out
}

func monthName(m int) string {
	if m < 1 || m > 12 {
		return "Unknown month"
	}
	return monthNames[m-1]
}

// formatPrice renders a price with two decimals.
func formatPrice(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(2)
}

func formatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// barView is one bar of the bar chart, with its height as a percentage of
// the tallest bar.
type barView struct {
	Label   string
	Count   int64
	Percent int
}

func barViews(buckets []core.BarBucket) []barView {
	var maxCount int64
	for _, b := range buckets {
		maxCount = max(maxCount, b.Count)
	}
	out := make([]barView, len(buckets))
	for i, b := range buckets {
		pct := 0
		if maxCount > 0 {
			pct = int(math.Round(float64(b.Count) * 100 / float64(maxCount)))
		}
		out[i] = barView{Label: b.Range, Count: b.Count, Percent: pct}
	}
	return out
}

// pieSlice is one SVG slice of the pie chart drawn in a 100x100 viewBox.
type pieSlice struct {
	Label string
	Count int64
	Path  string
	Color string
}

var pieColors = [...]string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

func pieSlices(counts []core.CategoryCount) []pieSlice {
	var total int64
	for _, c := range counts {
		total += c.Count
	}
	if total == 0 {
		return nil
	}

	const cx, cy, r = 50.0, 50.0, 45.0
	out := make([]pieSlice, 0, len(counts))
	angle := -math.Pi / 2
	for i, c := range counts {
		if c.Count == 0 {
			continue
		}
		s := pieSlice{Label: c.Category, Count: c.Count, Color: pieColors[i%len(pieColors)]}
		if c.Count == total {
			// A single full slice cannot be drawn as an arc.
			s.Path = fmt.Sprintf("M %.3f %.3f m -%.3f 0 a %.3f %.3f 0 1 0 %.3f 0 a %.3f %.3f 0 1 0 -%.3f 0",
				cx, cy, r, r, r, 2*r, r, r, 2*r)
			out = append(out, s)
			break
		}
		sweep := 2 * math.Pi * float64(c.Count) / float64(total)
		end := angle + sweep
		large := 0
		if sweep > math.Pi {
			large = 1
		}
		s.Path = fmt.Sprintf("M %.3f %.3f L %.3f %.3f A %.3f %.3f 0 %d 1 %.3f %.3f Z",
			cx, cy,
			cx+r*math.Cos(angle), cy+r*math.Sin(angle),
			r, r, large,
			cx+r*math.Cos(end), cy+r*math.Sin(end))
		out = append(out, s)
		angle = end
	}
	return out
}
