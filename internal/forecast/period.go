package forecast

import (
	"math"

	"github.com/andresuchdata/promolift/backend-go/internal/config"
	"github.com/andresuchdata/promolift/backend-go/internal/domain"
)

// Reducer computes promotion-period KPIs over a forecast series.
type Reducer struct {
	rushFactor float64
}

func NewReducer(cfg config.ForecastConfig) *Reducer {
	return &Reducer{rushFactor: cfg.RushReplenishmentFactor}
}

// Reduce restricts series to [start, end] inclusive and aggregates the period KPIs.
// An empty window yields zero metrics.
func (r *Reducer) Reduce(series []domain.ForecastData, start, end string) domain.PromotionPeriodMetrics {
	start, end = truncateDate(start), truncateDate(end)
	metrics := domain.PromotionPeriodMetrics{PeriodStart: start, PeriodEnd: end}

	var (
		markdown       float64
		revenueLoss    float64
		stockCost      float64
		soldUnits      int
		stockUnits     int
		accuracyActual int
		accuracyError  float64
	)

	for _, day := range series {
		if day.Date < start || day.Date > end {
			continue
		}

		forecast := day.Forecast()

		metrics.DayCount++
		metrics.TotalForecastUnits += forecast
		metrics.TotalRevenue += day.Revenue
		metrics.TotalBaselineRevenue += float64(day.BaselineUnits) * day.SellingPrice
		metrics.TotalProfit += day.DailyProfit
		metrics.TotalLostSalesUnits += day.LostSalesUnits

		if day.LostSalesUnits > 0 {
			metrics.StockOutDayCount++
			revenueLoss += float64(day.LostSalesUnits) * day.SellingPrice
			stockCost += float64(day.LostSalesUnits) * day.CostPrice * r.rushFactor
		}

		// Peak, not cumulative, provisioning requirement
		if required := day.RequiredStock(); required > metrics.RequiredDailyMinStock {
			metrics.RequiredDailyMinStock = required
		}

		markdown += float64(forecast) * day.SellingPrice * day.DiscountPercent / 100
		soldUnits += day.UnitsSold
		stockUnits += day.StockUnits

		if day.UnitsSold > 0 {
			accuracyActual += day.UnitsSold
			accuracyError += math.Abs(float64(forecast - day.UnitsSold))
		}
	}

	metrics.LiftAmount = metrics.TotalRevenue - metrics.TotalBaselineRevenue
	if metrics.TotalBaselineRevenue != 0 {
		metrics.LiftPercentage = metrics.LiftAmount / metrics.TotalBaselineRevenue * 100
	}

	if soldUnits+stockUnits > 0 {
		metrics.SellThroughPercent = float64(soldUnits) / float64(soldUnits+stockUnits) * 100
	}
	if accuracyActual > 0 {
		wape := accuracyError / float64(accuracyActual) * 100
		metrics.ForecastAccuracyPercent = math.Max(0, 100-wape)
	}

	metrics.TotalRevenue = Round2(metrics.TotalRevenue)
	metrics.TotalBaselineRevenue = Round2(metrics.TotalBaselineRevenue)
	metrics.TotalProfit = Round2(metrics.TotalProfit)
	metrics.LiftAmount = Round2(metrics.LiftAmount)
	metrics.LiftPercentage = Round2(metrics.LiftPercentage)
	metrics.EstimatedRevenueLoss = Round2(revenueLoss)
	metrics.StockCostEstimate = Round2(stockCost)
	metrics.MarkdownCost = Round2(markdown)
	metrics.SellThroughPercent = Round2(metrics.SellThroughPercent)
	metrics.ForecastAccuracyPercent = Round2(metrics.ForecastAccuracyPercent)

	return metrics
}

func truncateDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
