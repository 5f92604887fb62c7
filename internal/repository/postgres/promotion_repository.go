package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/andresuchdata/promolift/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

const seriesDateLayout = "2006-01-02"

type promotionRepository struct {
	db *DB
}

func NewPromotionRepository(db *DB) repository.PromotionRepository {
	return &promotionRepository{db: db}
}

const historyColumns = `
	h.campaign_key, h.id, h.event_date, h.start_date, h.end_date,
	h.region, h.category, h.store_code, h.product_code, h.promo_code,
	h.name, h.type, h.type_label, h.discount,
	h.uplift, h.uplift_value, h.profit, h.stock_cost_increase, h.lost_sales_value, h.roi,
	h.stock_state, h.forecast_accuracy,
	h.target_revenue, h.actual_revenue, h.planned_stock_days, h.actual_stock_days,
	h.stock_out_days, h.sell_through, h.markdown_cost, h.lift`

const calendarColumns = `
	c.id, c.event_date, c.start_date, c.end_date,
	c.region, c.category, c.store_code, c.product_code, c.promo_code,
	c.name, c.type, c.discount, c.status`

func (r *promotionRepository) History(ctx context.Context, filter domain.CampaignFilter) ([]domain.RawCampaignRow, error) {
	b := buildCampaignFilterClause(filter, "h.", 1)
	query := `SELECT` + historyColumns + `
		FROM promotion_history h` + b.where() + `
		ORDER BY h.event_date DESC, h.campaign_key`

	rows, err := r.db.selectMaps(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load promotion history: %w", err)
	}
	return toCampaignRows(rows), nil
}

func (r *promotionRepository) Calendar(ctx context.Context, filter domain.CampaignFilter) ([]domain.RawCampaignRow, error) {
	b := buildCampaignFilterClause(filter, "c.", 1)
	query := `SELECT` + calendarColumns + `
		FROM promotion_calendar c` + b.where() + `
		ORDER BY c.start_date, c.id`

	rows, err := r.db.selectMaps(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load promotion calendar: %w", err)
	}
	return toCampaignRows(rows), nil
}

func (r *promotionRepository) FindHistory(ctx context.Context, key string) (domain.RawCampaignRow, bool, error) {
	query := `SELECT` + historyColumns + `
		FROM promotion_history h
		WHERE h.campaign_key = $1 OR CAST(h.id AS TEXT) = $1
		LIMIT 1`

	rows, err := r.db.selectMaps(ctx, query, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find promotion history %q: %w", key, err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return normalizeRow(rows[0]), true, nil
}

func (r *promotionRepository) FindCalendar(ctx context.Context, key string) (domain.RawCampaignRow, bool, error) {
	query := `SELECT` + calendarColumns + `
		FROM promotion_calendar c
		WHERE CAST(c.id AS TEXT) = $1
		LIMIT 1`

	rows, err := r.db.selectMaps(ctx, query, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find promotion calendar %q: %w", key, err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return normalizeRow(rows[0]), true, nil
}

type seriesRow struct {
	SeriesDate     time.Time       `db:"series_date"`
	BaselineUnits  sql.NullFloat64 `db:"baseline_units"`
	ActualUnits    sql.NullFloat64 `db:"actual_units"`
	StockUnits     sql.NullFloat64 `db:"stock_units"`
	LostSalesUnits sql.NullFloat64 `db:"lost_sales_units"`
	Revenue        sql.NullFloat64 `db:"revenue"`
}

type summaryRow struct {
	TargetRevenue    sql.NullFloat64 `db:"target_revenue"`
	ActualRevenue    sql.NullFloat64 `db:"actual_revenue"`
	MarkdownCost     sql.NullFloat64 `db:"markdown_cost"`
	SellThrough      sql.NullFloat64 `db:"sell_through"`
	StockOutDays     sql.NullInt64   `db:"stock_out_days"`
	PlannedStockDays sql.NullInt64   `db:"planned_stock_days"`
	ActualStockDays  sql.NullInt64   `db:"actual_stock_days"`
	UpliftValue      sql.NullFloat64 `db:"uplift_value"`
	Profit           sql.NullFloat64 `db:"profit"`
	ForecastAccuracy sql.NullFloat64 `db:"forecast_accuracy"`
}

// DetailSeries returns the campaign's daily series widened by the requested
// window, plus the recorded summary when the history row carries revenue figures.
// It returns nil, nil when nothing is recorded for the campaign.
func (r *promotionRepository) DetailSeries(ctx context.Context, q repository.DetailSeriesQuery) (*domain.CampaignDetailSeries, error) {
	from, to, err := seriesWindow(q)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT series_date, baseline_units, actual_units, stock_units, lost_sales_units, revenue
		FROM campaign_daily_series
		WHERE campaign_key = $1
		  AND series_date BETWEEN $2 AND $3
		ORDER BY series_date
	`

	var rows []seriesRow
	err = r.db.withPermit(ctx, func() error {
		return sqlx.SelectContext(ctx, r.db, &rows, query, q.CampaignKey, from, to)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign series: %w", err)
	}

	summary, err := r.summary(ctx, q.CampaignKey)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 && summary == nil {
		return nil, nil
	}

	series := &domain.CampaignDetailSeries{
		Points:  make([]domain.CampaignSeriesPoint, 0, len(rows)),
		Summary: summary,
	}
	for _, row := range rows {
		series.Points = append(series.Points, domain.CampaignSeriesPoint{
			Date:           row.SeriesDate.Format(seriesDateLayout),
			BaselineUnits:  row.BaselineUnits.Float64,
			ActualUnits:    row.ActualUnits.Float64,
			StockUnits:     row.StockUnits.Float64,
			LostSalesUnits: row.LostSalesUnits.Float64,
			Revenue:        row.Revenue.Float64,
		})
	}
	return series, nil
}

func (r *promotionRepository) summary(ctx context.Context, key string) (*domain.CampaignPerformance, error) {
	query := `
		SELECT target_revenue, actual_revenue, markdown_cost, sell_through,
		       stock_out_days, planned_stock_days, actual_stock_days,
		       uplift_value, profit, forecast_accuracy
		FROM promotion_history
		WHERE campaign_key = $1 AND target_revenue IS NOT NULL
		LIMIT 1
	`

	var row summaryRow
	err := r.db.withPermit(ctx, func() error {
		return sqlx.GetContext(ctx, r.db, &row, query, key)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign summary: %w", err)
	}

	perf := &domain.CampaignPerformance{
		TargetRevenue:           row.TargetRevenue.Float64,
		ActualRevenue:           row.ActualRevenue.Float64,
		MarkdownCost:            row.MarkdownCost.Float64,
		SellThroughPercent:      row.SellThrough.Float64,
		StockOutDays:            int(row.StockOutDays.Int64),
		PlannedStockDays:        int(row.PlannedStockDays.Int64),
		ActualStockDays:         int(row.ActualStockDays.Int64),
		UpliftValue:             row.UpliftValue.Float64,
		ProfitEffect:            row.Profit.Float64,
		ForecastAccuracyPercent: row.ForecastAccuracy.Float64,
	}
	if !row.ActualStockDays.Valid && perf.PlannedStockDays > 0 {
		perf.ActualStockDays = max(0, perf.PlannedStockDays-perf.StockOutDays)
	}
	return perf, nil
}

// seriesWindow widens [StartDate, EndDate] by the before/after day counts.
func seriesWindow(q repository.DetailSeriesQuery) (string, string, error) {
	start, err := time.Parse(seriesDateLayout, q.StartDate)
	if err != nil {
		return "", "", fmt.Errorf("invalid series start date %q: %w", q.StartDate, err)
	}
	end := start
	if q.EndDate != "" {
		if end, err = time.Parse(seriesDateLayout, q.EndDate); err != nil {
			return "", "", fmt.Errorf("invalid series end date %q: %w", q.EndDate, err)
		}
	}
	if end.Before(start) {
		end = start
	}
	from := start.AddDate(0, 0, -max(0, q.WindowDaysBefore))
	to := end.AddDate(0, 0, max(0, q.WindowDaysAfter))
	return from.Format(seriesDateLayout), to.Format(seriesDateLayout), nil
}

func toCampaignRows(rows []map[string]any) []domain.RawCampaignRow {
	out := make([]domain.RawCampaignRow, len(rows))
	for i, row := range rows {
		out[i] = normalizeRow(row)
	}
	return out
}

// normalizeRow converts driver byte slices to strings so NUMERIC and TEXT
// columns read the same regardless of driver.
func normalizeRow(row map[string]any) domain.RawCampaignRow {
	out := make(domain.RawCampaignRow, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			out[k] = string(b)
			continue
		}
		out[k] = v
	}
	return out
}
