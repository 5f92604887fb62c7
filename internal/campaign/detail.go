package campaign

import (
	"fmt"
	"math"

	"github.com/andresuchdata/promolift/backend-go/internal/config"
	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/andresuchdata/promolift/backend-go/internal/forecast"
)

const defaultChartPoints = 7

// Synthesizer builds the detail view of a single campaign.
type Synthesizer struct {
	cfg config.CampaignConfig
}

func NewSynthesizer(cfg config.CampaignConfig) *Synthesizer {
	return &Synthesizer{cfg: cfg}
}

// Detail returns a scorecard for completed campaigns and a feasibility
// projection for all others. series may be nil.
func (s *Synthesizer) Detail(record domain.CampaignRecord, series *domain.CampaignDetailSeries) domain.CampaignDetail {
	perf := Performance(record, series)
	detail := domain.CampaignDetail{Record: record}

	if record.Status == domain.CampaignStatusCompleted {
		detail.Scorecard = s.scorecard(perf, series)
	} else {
		detail.Feasibility = s.feasibility(record, perf)
	}
	return detail
}

// Performance returns the series summary when present, otherwise figures derived
// from the record. Missing planned days are filled from the campaign window; actual
// days are derived only when there is no summary.
func Performance(record domain.CampaignRecord, series *domain.CampaignDetailSeries) domain.CampaignPerformance {
	var perf domain.CampaignPerformance
	reported := series != nil && series.Summary != nil
	if reported {
		perf = *series.Summary
	} else {
		perf = derivePerformance(record)
		if series != nil && len(series.Points) > 0 {
			perf.StockOutDays, perf.SoldUnits = 0, 0
			for _, p := range series.Points {
				if p.LostSalesUnits > 0 {
					perf.StockOutDays++
				}
				perf.SoldUnits += p.ActualUnits
			}
		}
	}

	if perf.PlannedStockDays <= 0 {
		perf.PlannedStockDays = plannedDays(record.StartDate, record.EndDate)
		if series != nil && len(series.Points) > perf.PlannedStockDays {
			perf.PlannedStockDays = len(series.Points)
		}
	}
	if !reported {
		perf.ActualStockDays = max(0, perf.PlannedStockDays-perf.StockOutDays)
	}
	return perf
}

// derivePerformance recovers target and actual revenue from the uplift
// percentage and value: uplift% = upliftValue / target * 100.
func derivePerformance(record domain.CampaignRecord) domain.CampaignPerformance {
	perf := domain.CampaignPerformance{
		MarkdownCost:            record.StockCostIncreaseRaw,
		UpliftValue:             record.UpliftValueRaw,
		ProfitEffect:            record.ProfitRaw,
		ForecastAccuracyPercent: record.ForecastAccuracyPercent,
	}
	if record.UpliftRaw != 0 {
		perf.TargetRevenue = math.Max(0, record.UpliftValueRaw*100/record.UpliftRaw)
	}
	perf.ActualRevenue = math.Max(0, perf.TargetRevenue+record.UpliftValueRaw)
	if record.StockState == domain.StockStateOOS {
		perf.StockOutDays = 1
	}
	return perf
}

func (s *Synthesizer) scorecard(perf domain.CampaignPerformance, series *domain.CampaignDetailSeries) *domain.Scorecard {
	card := &domain.Scorecard{
		TargetRevenue:           forecast.Round2(perf.TargetRevenue),
		ActualRevenue:           forecast.Round2(perf.ActualRevenue),
		UpliftValue:             forecast.Round2(perf.UpliftValue),
		MarkdownCost:            forecast.Round2(perf.MarkdownCost),
		NetContribution:         forecast.Round2(perf.UpliftValue - perf.MarkdownCost),
		StockOutDays:            perf.StockOutDays,
		IsOOS:                   perf.StockOutDays > 0,
		SellThroughPercent:      forecast.Round2(perf.SellThroughPercent),
		ForecastAccuracyPercent: forecast.Round2(perf.ForecastAccuracyPercent),
	}
	if perf.TargetRevenue > 0 {
		card.AchievementPct = forecast.Round2(perf.ActualRevenue / perf.TargetRevenue * 100)
	}

	if series != nil && len(series.Points) > 0 {
		card.ChartUnit = domain.ChartUnitUnits
		card.Chart = make([]domain.ChartPoint, 0, len(series.Points))
		for _, p := range series.Points {
			stock := p.StockUnits
			card.Chart = append(card.Chart, domain.ChartPoint{
				Label:  p.Date,
				Target: p.BaselineUnits,
				Actual: p.ActualUnits,
				Stock:  &stock,
			})
		}
		return card
	}

	card.ChartUnit = domain.ChartUnitRevenue
	card.Chart = s.syntheticChart(perf.TargetRevenue, perf.ActualRevenue)
	card.Synthetic = true
	return card
}

// syntheticChart spreads revenue over a fixed number of points with a sine
// modulation of the actual line. The output depends only on its inputs.
func (s *Synthesizer) syntheticChart(targetRevenue, actualRevenue float64) []domain.ChartPoint {
	n := s.cfg.ChartPoints
	if n <= 0 {
		n = defaultChartPoints
	}

	points := make([]domain.ChartPoint, n)
	target := targetRevenue / float64(n)
	actual := actualRevenue / float64(n)
	for i := range points {
		wave := math.Sin(2 * math.Pi * float64(i+1) / float64(n))
		points[i] = domain.ChartPoint{
			Label:  fmt.Sprintf("Day %d", i+1),
			Target: forecast.Round2(target),
			Actual: forecast.Round2(actual * (1 + s.cfg.ChartAmplitude*wave)),
		}
	}
	return points
}

func (s *Synthesizer) feasibility(record domain.CampaignRecord, perf domain.CampaignPerformance) *domain.Feasibility {
	f := &domain.Feasibility{
		TargetRevenue:    forecast.Round2(perf.TargetRevenue),
		PlannedStockDays: perf.PlannedStockDays,
		ActualStockDays:  perf.ActualStockDays,
		StockOutDays:     perf.StockOutDays,
	}

	f.LiftValue = record.UpliftValueRaw
	if f.LiftValue == 0 {
		f.LiftValue = perf.ActualRevenue - perf.TargetRevenue
	}
	f.LiftValue = forecast.Round2(f.LiftValue)

	f.StockCoveragePct = 100
	if perf.PlannedStockDays > 0 {
		f.StockCoveragePct = forecast.Round2(math.Min(100, float64(perf.ActualStockDays)/float64(perf.PlannedStockDays)*100))
	}

	confidence := 100 - float64(perf.StockOutDays)*s.cfg.ConfidencePenaltyPerDay
	f.ConfidenceScore = math.Min(100, math.Max(s.cfg.ConfidenceFloor, confidence))
	return f
}
