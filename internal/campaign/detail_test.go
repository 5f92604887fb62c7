package campaign

import (
	"encoding/json"
	"testing"

	"github.com/andresuchdata/promolift/backend-go/internal/config"
	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedRecord() domain.CampaignRecord {
	return domain.CampaignRecord{
		Key:                  "SPRING-24",
		StartDate:            "2024-04-10",
		EndDate:              "2024-04-16",
		UpliftRaw:            25,
		UpliftValueRaw:       250,
		ProfitRaw:            90,
		StockCostIncreaseRaw: 40,
		StockState:           domain.StockStateOOS,
		Status:               domain.CampaignStatusCompleted,
	}
}

func TestSynthesizer_ScorecardFromSummary(t *testing.T) {
	s := NewSynthesizer(config.DefaultCampaignConfig())
	series := &domain.CampaignDetailSeries{
		Points: []domain.CampaignSeriesPoint{
			{Date: "2024-04-10", BaselineUnits: 10, ActualUnits: 14, StockUnits: 30},
			{Date: "2024-04-11", BaselineUnits: 10, ActualUnits: 12, StockUnits: 16},
		},
		Summary: &domain.CampaignPerformance{
			TargetRevenue: 2000,
			ActualRevenue: 2300,
			MarkdownCost:  120,
			UpliftValue:   300,
			StockOutDays:  0,
		},
	}

	detail := s.Detail(completedRecord(), series)
	require.NotNil(t, detail.Scorecard)
	assert.Nil(t, detail.Feasibility)

	card := detail.Scorecard
	assert.Equal(t, 115.0, card.AchievementPct)
	assert.Equal(t, 180.0, card.NetContribution)
	assert.False(t, card.IsOOS)
	assert.False(t, card.Synthetic)
	assert.Equal(t, domain.ChartUnitUnits, card.ChartUnit)
	require.Len(t, card.Chart, 2)
	assert.Equal(t, "2024-04-10", card.Chart[0].Label)
	assert.Equal(t, 14.0, card.Chart[0].Actual)
	require.NotNil(t, card.Chart[0].Stock)
	assert.Equal(t, 30.0, *card.Chart[0].Stock)
}

func TestSynthesizer_ScorecardFallback(t *testing.T) {
	s := NewSynthesizer(config.DefaultCampaignConfig())

	detail := s.Detail(completedRecord(), nil)
	require.NotNil(t, detail.Scorecard)

	card := detail.Scorecard
	// target = 250 * 100 / 25, actual = target + 250
	assert.Equal(t, 1000.0, card.TargetRevenue)
	assert.Equal(t, 1250.0, card.ActualRevenue)
	assert.Equal(t, 125.0, card.AchievementPct)
	assert.Equal(t, 210.0, card.NetContribution)
	assert.True(t, card.IsOOS)
	assert.True(t, card.Synthetic)
	assert.Equal(t, domain.ChartUnitRevenue, card.ChartUnit)
	require.Len(t, card.Chart, 7)

	var actualSum float64
	for i, p := range card.Chart {
		assert.Equal(t, 142.86, p.Target, "point %d", i)
		assert.Nil(t, p.Stock)
		actualSum += p.Actual
	}
	assert.InDelta(t, 1250.0, actualSum, 0.05)
	assert.Equal(t, "Day 1", card.Chart[0].Label)
}

func TestSynthesizer_FallbackIsDeterministic(t *testing.T) {
	s := NewSynthesizer(config.DefaultCampaignConfig())

	first, err := json.Marshal(s.Detail(completedRecord(), nil))
	require.NoError(t, err)
	second, err := json.Marshal(s.Detail(completedRecord(), nil))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSynthesizer_Feasibility(t *testing.T) {
	s := NewSynthesizer(config.DefaultCampaignConfig())

	t.Run("planned campaign", func(t *testing.T) {
		record := domain.CampaignRecord{
			Key:       "SUMMER",
			StartDate: "2024-07-01",
			EndDate:   "2024-07-10",
			Status:    domain.CampaignStatusPending,
		}

		detail := s.Detail(record, nil)
		require.NotNil(t, detail.Feasibility)
		assert.Nil(t, detail.Scorecard)

		f := detail.Feasibility
		assert.Equal(t, 10, f.PlannedStockDays)
		assert.Equal(t, 100.0, f.StockCoveragePct)
		assert.Equal(t, 100.0, f.ConfidenceScore)
		assert.Zero(t, f.LiftValue)
	})

	t.Run("stock-outs reduce coverage and confidence", func(t *testing.T) {
		record := domain.CampaignRecord{Key: "X", StartDate: "2024-07-01", EndDate: "2024-07-10", Status: domain.CampaignStatusApproved}
		series := &domain.CampaignDetailSeries{Summary: &domain.CampaignPerformance{
			TargetRevenue:   1000,
			ActualRevenue:   1100,
			StockOutDays:    3,
			ActualStockDays: 7,
		}}

		f := s.Detail(record, series).Feasibility
		require.NotNil(t, f)
		assert.Equal(t, 100.0, f.LiftValue)
		assert.Equal(t, 7, f.ActualStockDays)
		assert.Equal(t, 70.0, f.StockCoveragePct)
		assert.Equal(t, 70.0, f.ConfidenceScore)
	})

	t.Run("confidence floor", func(t *testing.T) {
		record := domain.CampaignRecord{Key: "Y", Status: domain.CampaignStatusDraft, UpliftValueRaw: 55}
		series := &domain.CampaignDetailSeries{Summary: &domain.CampaignPerformance{StockOutDays: 9, PlannedStockDays: 10, ActualStockDays: 1}}

		f := s.Detail(record, series).Feasibility
		require.NotNil(t, f)
		assert.Equal(t, 55.0, f.ConfidenceScore)
		assert.Equal(t, 55.0, f.LiftValue)
		assert.Equal(t, 10.0, f.StockCoveragePct)
	})
}

func TestPerformance_CountsStockOutsFromPoints(t *testing.T) {
	record := completedRecord()
	series := &domain.CampaignDetailSeries{Points: []domain.CampaignSeriesPoint{
		{Date: "2024-04-10", ActualUnits: 5, LostSalesUnits: 2},
		{Date: "2024-04-11", ActualUnits: 6},
		{Date: "2024-04-12", ActualUnits: 7, LostSalesUnits: 1},
	}}

	perf := Performance(record, series)
	assert.Equal(t, 2, perf.StockOutDays)
	assert.Equal(t, 18.0, perf.SoldUnits)
	assert.Equal(t, 7, perf.PlannedStockDays)
	assert.Equal(t, 5, perf.ActualStockDays)
}

func TestPerformance_KeepsReportedActualStockDays(t *testing.T) {
	record := completedRecord()
	series := &domain.CampaignDetailSeries{Summary: &domain.CampaignPerformance{
		TargetRevenue:    1000,
		ActualRevenue:    900,
		StockOutDays:     2,
		PlannedStockDays: 7,
		ActualStockDays:  0,
	}}

	perf := Performance(record, series)
	assert.Equal(t, 7, perf.PlannedStockDays)
	assert.Equal(t, 0, perf.ActualStockDays)

	f := NewSynthesizer(config.DefaultCampaignConfig()).Detail(domain.CampaignRecord{Key: "Z", Status: domain.CampaignStatusApproved}, series).Feasibility
	require.NotNil(t, f)
	assert.Equal(t, 0, f.ActualStockDays)
	assert.Equal(t, 0.0, f.StockCoveragePct)
}
