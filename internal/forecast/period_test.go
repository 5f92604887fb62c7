package forecast

import (
	"testing"

	"github.com/andresuchdata/promolift/backend-go/internal/config"
	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestReducer_Lift(t *testing.T) {
	reducer := NewReducer(config.DefaultForecastConfig())

	series := []domain.ForecastData{
		{Date: "2024-05-01", ForecastUnits: intPtr(12), BaselineUnits: 10, SellingPrice: 100, Revenue: 1250},
	}

	m := reducer.Reduce(series, "2024-05-01", "2024-05-01")
	assert.Equal(t, 250.0, m.LiftAmount)
	assert.Equal(t, 25.0, m.LiftPercentage)
	assert.Equal(t, 1000.0, m.TotalBaselineRevenue)
	assert.Equal(t, 1, m.DayCount)

	t.Run("zero baseline revenue", func(t *testing.T) {
		series := []domain.ForecastData{
			{Date: "2024-05-01", ForecastUnits: intPtr(3), BaselineUnits: 0, SellingPrice: 100, Revenue: 300},
		}
		m := reducer.Reduce(series, "2024-05-01", "2024-05-01")
		assert.Equal(t, 300.0, m.LiftAmount)
		assert.Equal(t, 0.0, m.LiftPercentage)
	})
}

func TestReducer_EmptyPeriod(t *testing.T) {
	reducer := NewReducer(config.DefaultForecastConfig())
	series := []domain.ForecastData{
		{Date: "2024-05-01", ForecastUnits: intPtr(12), BaselineUnits: 10, SellingPrice: 100, Revenue: 1250, LostSalesUnits: 3},
	}

	m := reducer.Reduce(series, "2024-06-01", "2024-06-30")
	assert.Equal(t, domain.PromotionPeriodMetrics{PeriodStart: "2024-06-01", PeriodEnd: "2024-06-30"}, m)

	m = reducer.Reduce(nil, "2024-06-01", "2024-06-30")
	assert.Zero(t, m.TotalRevenue)
	assert.Zero(t, m.RequiredDailyMinStock)
}

func TestReducer_StockKPIs(t *testing.T) {
	cfg := config.DefaultForecastConfig()
	reducer := NewReducer(cfg)

	series := []domain.ForecastData{
		{Date: "2024-04-30", ForecastUnits: intPtr(100), LostSalesUnits: 50, SellingPrice: 10, CostPrice: 5},
		{Date: "2024-05-01", ForecastUnits: intPtr(20), LostSalesUnits: 5, UnconstrainedDemand: intPtr(25), SellingPrice: 10, CostPrice: 5, UnitsSold: 18, StockUnits: 2},
		{Date: "2024-05-02", ForecastUnits: intPtr(30), SellingPrice: 10, CostPrice: 5, UnitsSold: 30, DiscountPercent: 10},
		{Date: "2024-05-03", ForecastUnits: nil, LostSalesUnits: 2, UnconstrainedDemand: intPtr(2), SellingPrice: 12, CostPrice: 6},
	}

	m := reducer.Reduce(series, "2024-05-01", "2024-05-03T00:00:00")

	assert.Equal(t, 3, m.DayCount)
	assert.Equal(t, 50, m.TotalForecastUnits)
	assert.Equal(t, 7, m.TotalLostSalesUnits)
	assert.Equal(t, 2, m.StockOutDayCount)
	assert.Equal(t, 30, m.RequiredDailyMinStock, "peak, not sum")
	assert.Equal(t, 74.0, m.EstimatedRevenueLoss)
	// (5*5 + 2*6) * 0.12
	assert.Equal(t, 4.44, m.StockCostEstimate)
	assert.Equal(t, 30.0, m.MarkdownCost)
	assert.Equal(t, 96.0, m.SellThroughPercent)
	assert.Equal(t, 95.83, m.ForecastAccuracyPercent)
}

func TestReducer_ConfigurableRushFactor(t *testing.T) {
	cfg := config.DefaultForecastConfig()
	cfg.RushReplenishmentFactor = 0.5
	reducer := NewReducer(cfg)

	series := []domain.ForecastData{
		{Date: "2024-05-01", LostSalesUnits: 4, SellingPrice: 10, CostPrice: 5},
	}
	m := reducer.Reduce(series, "2024-05-01", "2024-05-01")
	assert.Equal(t, 10.0, m.StockCostEstimate)
}
