package seed

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"salesboard/internal/core"
)

// record mirrors one element of the external dataset.
type record struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	Category    string      `json:"category"`
	Image       string      `json:"image"`
	Sold        bool        `json:"sold"`
	DateOfSale  time.Time   `json:"dateOfSale"`
}

// Decode reads a JSON array of transaction objects. Source ids are dropped;
// the store assigns its own.
func Decode(r io.Reader) ([]core.Transaction, error) {
	var recs []record
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	out := make([]core.Transaction, 0, len(recs))
	for _, rec := range recs {
		out = append(out, core.Transaction{
			Title:       rec.Title,
			Description: rec.Description,
			Price:       rec.Price,
			Category:    rec.Category,
			Image:       rec.Image,
			Sold:        rec.Sold,
			DateOfSale:  rec.DateOfSale.UTC(),
		})
	}
	return out, nil
}
