package core

// Statistics summarizes sales for a month.
type Statistics struct {
	TotalSold       int64
	TotalNotSold    int64
	TotalSaleAmount float64
}

// BarBucket is the number of records whose price falls in one range.
type BarBucket struct {
	Range string
	Count int64
}

// CategoryCount is the number of records in one category.
type CategoryCount struct {
	Category string
	Count    int64
}

// Combined bundles every view of a month in one payload.
type Combined struct {
	Transactions []Transaction
	Statistics   Statistics
	BarChart     []BarBucket
	PieChart     []CategoryCount
}
