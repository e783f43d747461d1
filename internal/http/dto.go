package http

import (
	"time"

	"salesboard/internal/core"
)

// JSON shapes of the REST endpoints.
type (
	transactionDTO struct {
		ID          string    `json:"_id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Price       float64   `json:"price"`
		Category    string    `json:"category"`
		Image       string    `json:"image"`
		Sold        bool      `json:"sold"`
		DateOfSale  time.Time `json:"dateOfSale"`
	}

	statisticsDTO struct {
		TotalSold       int64   `json:"totalSold"`
		TotalNotSold    int64   `json:"totalNotSold"`
		TotalSaleAmount float64 `json:"totalSaleAmount"`
	}

	barBucketDTO struct {
		Range string `json:"range"`
		Count int64  `json:"count"`
	}

	categoryCountDTO struct {
		ID    string `json:"_id"`
		Count int64  `json:"count"`
	}

	combinedDTO struct {
		Transactions []transactionDTO   `json:"transactions"`
		Statistics   statisticsDTO      `json:"statistics"`
		BarChart     []barBucketDTO     `json:"barChart"`
		PieChart     []categoryCountDTO `json:"pieChart"`
	}
)

func toTransactionDTOs(txs []core.Transaction) []transactionDTO {
	out := make([]transactionDTO, 0, len(txs))
	for _, t := range txs {
		out = append(out, transactionDTO{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Price:       t.Price,
			Category:    t.Category,
			Image:       t.Image,
			Sold:        t.Sold,
			DateOfSale:  t.DateOfSale.UTC(),
		})
	}
	return out
}

func toStatisticsDTO(s core.Statistics) statisticsDTO {
	return statisticsDTO{
		TotalSold:       s.TotalSold,
		TotalNotSold:    s.TotalNotSold,
		TotalSaleAmount: s.TotalSaleAmount,
	}
}

func toBarDTOs(b []core.BarBucket) []barBucketDTO {
	out := make([]barBucketDTO, 0, len(b))
	for _, x := range b {
		out = append(out, barBucketDTO{Range: x.Range, Count: x.Count})
	}
	return out
}

func toCategoryDTOs(c []core.CategoryCount) []categoryCountDTO {
	out := make([]categoryCountDTO, 0, len(c))
	for _, x := range c {
		out = append(out, categoryCountDTO{ID: x.Category, Count: x.Count})
	}
	return out
}

func toCombinedDTO(c core.Combined) combinedDTO {
	return combinedDTO{
		Transactions: toTransactionDTOs(c.Transactions),
		Statistics:   toStatisticsDTO(c.Statistics),
		BarChart:     toBarDTOs(c.BarChart),
		PieChart:     toCategoryDTOs(c.PieChart),
	}
}
