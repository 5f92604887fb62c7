package forecast

import (
	"strings"
	"time"

	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/spf13/cast"
)

// field is a prediction row column. Key is the canonical backend name and is
// where merged values are written; aliases are accepted on read.
type field struct {
	Key     string
	Aliases []string
}

var (
	fieldDate            = field{Key: "tarih", Aliases: []string{"date"}}
	fieldBaseline        = field{Key: "baseline"}
	fieldRollingMean     = field{Key: "roll_mean_7"}
	fieldForecast        = field{Key: "tahmin", Aliases: []string{"forecast"}}
	fieldUnitsSold       = field{Key: "ciro_adedi", Aliases: []string{"satismiktari", "units_sold"}}
	fieldRevenue         = field{Key: "ciro", Aliases: []string{"revenue"}}
	fieldStock           = field{Key: "stok", Aliases: []string{"stock"}}
	fieldSellingPrice    = field{Key: "satisFiyati", Aliases: []string{"selling_price"}}
	fieldCostPrice       = field{Key: "ham_fiyat", Aliases: []string{"cost_price"}}
	fieldUnitMargin      = field{Key: "birim_kar", Aliases: []string{"unit_margin"}}
	fieldMarginPercent   = field{Key: "birim_marj_yuzde", Aliases: []string{"margin_percent"}}
	fieldDailyProfit     = field{Key: "gunluk_kar", Aliases: []string{"daily_profit"}}
	fieldPromotionLabels = field{Key: "benim_promom", Aliases: []string{"promotions"}}
	fieldDiscountPercent = field{Key: "benim_promom_yuzde", Aliases: []string{"discount_percent"}}
	fieldWeather         = field{Key: "weather"}
	fieldLostSales       = field{Key: "lostSales", Aliases: []string{"lost_sales", "kayip_satis"}}
	fieldUnconstrained   = field{Key: "unconstrainedDemand", Aliases: []string{"unconstrained_demand"}}
)

// lookup returns the first non-nil value stored under the field's key or aliases.
func lookup(row domain.RawPredictionRow, f field) (any, bool) {
	if v, ok := row[f.Key]; ok && v != nil {
		return v, true
	}
	for _, alias := range f.Aliases {
		if v, ok := row[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// number returns the field as a finite number, reporting false when it is absent or not numeric.
func number(row domain.RawPredictionRow, f field) (float64, bool) {
	v, ok := lookup(row, f)
	if !ok {
		return 0, false
	}
	return CoerceOK(v)
}

// baselineValue reads the baseline, falling back to the 7-day rolling mean.
func baselineValue(row domain.RawPredictionRow) (any, bool) {
	if v, ok := lookup(row, fieldBaseline); ok {
		return v, true
	}
	return lookup(row, fieldRollingMean)
}

func baselineNumber(row domain.RawPredictionRow) (float64, bool) {
	v, ok := baselineValue(row)
	if !ok {
		return 0, false
	}
	return CoerceOK(v)
}

// dateKey returns the day-granular key of a row, or "" when the row has no date.
func dateKey(row domain.RawPredictionRow) string {
	v, ok := lookup(row, fieldDate)
	if !ok {
		return ""
	}

	var s string
	switch t := v.(type) {
	case time.Time:
		s = t.Format("2006-01-02")
	case *time.Time:
		if t == nil {
			return ""
		}
		s = t.Format("2006-01-02")
	default:
		s = strings.TrimSpace(cast.ToString(v))
	}

	if len(s) > 10 {
		s = s[:10]
	}
	return s
}
