package forecast

import (
	"sort"

	"github.com/andresuchdata/promolift/backend-go/internal/domain"
)

// additiveFields are summed across stores predicting the same date. Every other
// column keeps the value of the first row seen for that date.
var additiveFields = []field{
	fieldForecast,
	fieldUnitsSold,
	fieldRevenue,
	fieldStock,
	fieldDailyProfit,
	fieldLostSales,
	fieldUnconstrained,
}

// Aggregate merges per-store rows into one row per date, ascending by date.
// Rows without a date are dropped. Input rows are not modified.
func Aggregate(rows []domain.RawPredictionRow) []domain.RawPredictionRow {
	byDate := make(map[string]domain.RawPredictionRow, len(rows))
	dates := make([]string, 0, len(rows))

	for _, row := range rows {
		key := dateKey(row)
		if key == "" {
			continue
		}

		merged, seen := byDate[key]
		if !seen {
			merged = cloneRow(row)
			merged[fieldDate.Key] = key
			byDate[key] = merged
			dates = append(dates, key)
			continue
		}

		// Non-numeric values contribute nothing; a field stays as first seen when no side is numeric.
		for _, f := range additiveFields {
			current, okCurrent := number(merged, f)
			incoming, okIncoming := number(row, f)
			if !okCurrent && !okIncoming {
				continue
			}
			merged[f.Key] = current + incoming
		}

		current, okCurrent := baselineNumber(merged)
		incoming, okIncoming := baselineNumber(row)
		if okCurrent || okIncoming {
			merged[fieldBaseline.Key] = current + incoming
		}
	}

	sort.Strings(dates)

	out := make([]domain.RawPredictionRow, 0, len(dates))
	for _, date := range dates {
		out = append(out, byDate[date])
	}
	return out
}

// BackfillStock sets the stock column from stockByDate on rows that lack one.
// It returns the number of rows filled.
func BackfillStock(rows []domain.RawPredictionRow, stockByDate map[string]float64) int {
	if len(stockByDate) == 0 {
		return 0
	}

	filled := 0
	for _, row := range rows {
		if _, ok := number(row, fieldStock); ok {
			continue
		}
		if stock, ok := stockByDate[dateKey(row)]; ok {
			row[fieldStock.Key] = stock
			filled++
		}
	}
	return filled
}

// MissingStockDates lists the dates whose rows carry no usable stock value.
func MissingStockDates(rows []domain.RawPredictionRow) []string {
	var dates []string
	for _, row := range rows {
		if _, ok := number(row, fieldStock); !ok {
			if key := dateKey(row); key != "" {
				dates = append(dates, key)
			}
		}
	}
	return dates
}

func cloneRow(row domain.RawPredictionRow) domain.RawPredictionRow {
	out := make(domain.RawPredictionRow, len(row)+1)
	for k, v := range row {
		out[k] = v
	}
	return out
}
