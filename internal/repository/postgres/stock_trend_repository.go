package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/promolift/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

type stockTrendRepository struct {
	db *DB
}

func NewStockTrendRepository(db *DB) repository.StockTrendRepository {
	return &stockTrendRepository{db: db}
}

type stockTrendRow struct {
	StockDate time.Time `db:"stock_date"`
	Stock     float64   `db:"stock"`
}

func (r *stockTrendRepository) StockByDate(ctx context.Context, productID int64, storeIDs []int64, from, to string) (map[string]float64, error) {
	b := newClauseBuilder(4)
	b.addIn("store_code", storeIDs)

	query := `
		SELECT stock_date, COALESCE(SUM(stock), 0) AS stock
		FROM daily_stock
		WHERE product_code = $1
		  AND stock_date BETWEEN $2 AND $3` + b.and() + `
		GROUP BY stock_date
		ORDER BY stock_date
	`

	args := append([]any{productID, from, to}, b.args...)

	var rows []stockTrendRow
	err := r.db.withPermit(ctx, func() error {
		return sqlx.SelectContext(ctx, r.db, &rows, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load stock trend: %w", err)
	}

	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.StockDate.Format("2006-01-02")] = row.Stock
	}
	return out, nil
}
