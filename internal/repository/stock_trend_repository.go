package repository

import "context"

// StockTrendRepository supplies actual stock on hand per day.
type StockTrendRepository interface {
	// StockByDate sums stock over the given stores for each date in [from, to], keyed YYYY-MM-DD.
	StockByDate(ctx context.Context, productID int64, storeIDs []int64, from, to string) (map[string]float64, error)
}
