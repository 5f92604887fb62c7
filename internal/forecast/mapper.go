package forecast

import (
	"strings"

	"github.com/andresuchdata/promolift/backend-go/internal/config"
	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/spf13/cast"
)

// Promotion is the promotion context a series is mapped under.
type Promotion struct {
	Code            string
	Name            string
	DiscountPercent *float64
}

// PromotionFromRequest extracts the promotion context of a forecast request.
func PromotionFromRequest(req domain.ForecastRequest) Promotion {
	return Promotion{
		Code:            req.PromotionCode,
		Name:            req.PromotionName,
		DiscountPercent: req.DiscountPercent,
	}
}

// Mapper normalizes aggregated prediction rows into ForecastData.
type Mapper struct {
	cfg config.ForecastConfig
}

func NewMapper(cfg config.ForecastConfig) *Mapper {
	return &Mapper{cfg: cfg}
}

// Map converts aggregated rows into the canonical series. An empty input is
// reported as domain.ErrNoForecastData.
func (m *Mapper) Map(rows []domain.RawPredictionRow, promo Promotion) ([]domain.ForecastData, error) {
	if len(rows) == 0 {
		return nil, domain.ErrNoForecastData
	}

	series := make([]domain.ForecastData, 0, len(rows))
	for _, row := range rows {
		date := dateKey(row)
		if date == "" {
			continue
		}
		series = append(series, m.mapRow(date, row, promo))
	}

	if len(series) == 0 {
		return nil, domain.ErrNoForecastData
	}
	return series, nil
}

func (m *Mapper) mapRow(date string, row domain.RawPredictionRow, promo Promotion) domain.ForecastData {
	out := domain.ForecastData{Date: date}

	// 1. Unit quantities, clamped to zero and rounded
	var forecastUnits int
	if v, ok := number(row, fieldForecast); ok {
		forecastUnits = units(v)
		out.ForecastUnits = &forecastUnits
	}
	baseline, _ := baselineValue(row)
	out.BaselineUnits = units(Coerce(baseline, 0))
	out.UnitsSold = units(numberOr(row, fieldUnitsSold, 0))
	out.LostSalesUnits = units(numberOr(row, fieldLostSales, 0))
	out.StockUnits = units(numberOr(row, fieldStock, 0))

	// 2. Unconstrained demand never falls below the forecast
	if v, ok := number(row, fieldUnconstrained); ok {
		demand := max(units(v), forecastUnits)
		out.UnconstrainedDemand = &demand
	} else if out.LostSalesUnits > 0 {
		demand := forecastUnits + out.LostSalesUnits
		out.UnconstrainedDemand = &demand
	}

	// 3. Prices fall back to the reference values
	out.SellingPrice = numberOr(row, fieldSellingPrice, m.cfg.ReferencePrice)
	if out.SellingPrice <= 0 {
		out.SellingPrice = m.cfg.ReferencePrice
	}
	out.CostPrice = numberOr(row, fieldCostPrice, m.cfg.ReferenceCost)
	if out.CostPrice < 0 {
		out.CostPrice = max(m.cfg.ReferenceCost, 0)
	}
	out.UnitMargin = numberOr(row, fieldUnitMargin, out.SellingPrice-out.CostPrice)
	if v, ok := number(row, fieldMarginPercent); ok {
		out.MarginPercent = v
	} else if out.SellingPrice > 0 {
		out.MarginPercent = out.UnitMargin / out.SellingPrice * 100
	}

	// 4. Revenue and profit derived from the forecast when absent
	out.Revenue = numberOr(row, fieldRevenue, float64(forecastUnits)*out.SellingPrice)
	out.DailyProfit = numberOr(row, fieldDailyProfit, float64(forecastUnits)*out.UnitMargin)

	// 5. Promotion labels and discount
	active := domain.IsPromotionActive(promo.Code)
	if active {
		out.PromotionLabels = labelsOf(row)
		if len(out.PromotionLabels) == 0 {
			out.PromotionLabels = []string{m.promotionName(promo)}
		}
		fallbackDiscount := 0.0
		if promo.DiscountPercent != nil {
			fallbackDiscount = *promo.DiscountPercent
		}
		out.DiscountPercent = numberOr(row, fieldDiscountPercent, fallbackDiscount)
	} else {
		out.PromotionLabels = []string{}
	}

	if v, ok := lookup(row, fieldWeather); ok {
		out.Weather = ClassifyWeather(cast.ToString(v))
	} else {
		out.Weather = domain.WeatherSun
	}

	out.SellingPrice = Round2(out.SellingPrice)
	out.CostPrice = Round2(out.CostPrice)
	out.UnitMargin = Round2(out.UnitMargin)
	out.MarginPercent = Round2(out.MarginPercent)
	out.Revenue = Round2(out.Revenue)
	out.DailyProfit = Round2(out.DailyProfit)
	out.DiscountPercent = Round2(out.DiscountPercent)

	return out
}

func (m *Mapper) promotionName(promo Promotion) string {
	if name := strings.TrimSpace(promo.Name); name != "" {
		return name
	}
	if m.cfg.DefaultPromotionName != "" {
		return m.cfg.DefaultPromotionName
	}
	return promo.Code
}

func numberOr(row domain.RawPredictionRow, f field, fallback float64) float64 {
	if v, ok := number(row, f); ok {
		return v
	}
	return fallback
}

// labelsOf reads promotion labels given either as a list or a comma-separated string.
func labelsOf(row domain.RawPredictionRow) []string {
	v, ok := lookup(row, fieldPromotionLabels)
	if !ok {
		return nil
	}

	var raw []string
	switch t := v.(type) {
	case string:
		raw = strings.Split(t, ",")
	case []string:
		raw = t
	case []any:
		for _, item := range t {
			if item != nil {
				raw = append(raw, cast.ToString(item))
			}
		}
	default:
		raw = []string{cast.ToString(t)}
	}

	labels := make([]string, 0, len(raw))
	for _, label := range raw {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			labels = append(labels, trimmed)
		}
	}
	return labels
}
