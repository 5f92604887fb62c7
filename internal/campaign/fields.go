package campaign

import (
	"strings"
	"time"

	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/andresuchdata/promolift/backend-go/internal/forecast"
	"github.com/spf13/cast"
)

// Column names of history and calendar rows.
const (
	colKey               = "campaign_key"
	colID                = "id"
	colEventDate         = "event_date"
	colDate              = "date"
	colStartDate         = "start_date"
	colEndDate           = "end_date"
	colRegion            = "region"
	colCategory          = "category"
	colStoreCode         = "store_code"
	colProductCode       = "product_code"
	colPromoCode         = "promo_code"
	colName              = "name"
	colType              = "type"
	colTypeLabel         = "type_label"
	colDiscount          = "discount"
	colStatus            = "status"
	colUplift            = "uplift"
	colUpliftValue       = "uplift_value"
	colProfit            = "profit"
	colStockState        = "stock_state"
	colForecastAccuracy  = "forecast_accuracy"
	colStockCostIncrease = "stock_cost_increase"
	colLostSalesValue    = "lost_sales_value"
	colROI               = "roi"
	colTargetRevenue     = "target_revenue"
	colActualRevenue     = "actual_revenue"
	colPlannedStockDays  = "planned_stock_days"
	colActualStockDays   = "actual_stock_days"
	colStockOutDays      = "stock_out_days"
	colSellThrough       = "sell_through"
	colMarkdownCost      = "markdown_cost"
	colLift              = "lift"
)

const dateLayout = "2006-01-02"

func str(row domain.RawCampaignRow, keys ...string) string {
	for _, key := range keys {
		v, ok := row[key]
		if !ok || v == nil {
			continue
		}
		if b, isBytes := v.([]byte); isBytes {
			v = string(b)
		}
		if s := strings.TrimSpace(cast.ToString(v)); s != "" {
			return s
		}
	}
	return ""
}

func num(row domain.RawCampaignRow, keys ...string) float64 {
	for _, key := range keys {
		if f, ok := forecast.CoerceOK(row[key]); ok {
			return f
		}
	}
	return 0
}

func numOK(row domain.RawCampaignRow, key string) (float64, bool) {
	return forecast.CoerceOK(row[key])
}

func code(row domain.RawCampaignRow, key string) *int64 {
	f, ok := numOK(row, key)
	if !ok {
		return nil
	}
	v := int64(f)
	return &v
}

// date returns the first present key as YYYY-MM-DD.
func date(row domain.RawCampaignRow, keys ...string) string {
	for _, key := range keys {
		switch v := row[key].(type) {
		case time.Time:
			return v.Format(dateLayout)
		case *time.Time:
			if v != nil {
				return v.Format(dateLayout)
			}
		}
		if s := str(row, key); s != "" {
			if len(s) > 10 {
				s = s[:10]
			}
			return s
		}
	}
	return ""
}

// plannedDays is the inclusive length of a campaign window, or 0 when the dates do not parse.
func plannedDays(start, end string) int {
	from, err := time.Parse(dateLayout, start)
	if err != nil {
		return 0
	}
	to, err := time.Parse(dateLayout, end)
	if err != nil || to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}
