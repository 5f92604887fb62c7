package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"forecast.read", "forecast.write"}, splitList(" forecast.read, ,forecast.write "))
}

func TestDefaults(t *testing.T) {
	fc := DefaultForecastConfig()
	assert.Equal(t, 87.45, fc.ReferencePrice)
	assert.Equal(t, 67.67, fc.ReferenceCost)
	assert.Equal(t, 0.12, fc.RushReplenishmentFactor)

	cc := DefaultCampaignConfig()
	assert.Equal(t, 0.95, cc.SuccessAchievementRatio)
	assert.Equal(t, 3, cc.MaxStockDayDeviation)
	assert.Equal(t, 55.0, cc.ConfidenceFloor)
	assert.Equal(t, 7, cc.ChartPoints)
}

func TestLoad(t *testing.T) {
	t.Setenv("FORECAST_RUSH_REPLENISHMENT_FACTOR", "0.2")
	t.Setenv("PREDICTION_BASE_URL", "http://predict.local/api/")

	cfg := Load()
	assert.Equal(t, 0.2, cfg.Forecast.RushReplenishmentFactor)
	assert.Equal(t, "http://predict.local/api", cfg.Prediction.BaseURL)
	assert.Equal(t, 0.95, cfg.Campaign.SuccessAchievementRatio)
	assert.Same(t, cfg, Load())
}
