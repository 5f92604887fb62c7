package campaign

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/promolift/backend-go/internal/config"
	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/andresuchdata/promolift/backend-go/internal/forecast"
	"github.com/rs/zerolog/log"
)

// Classifier turns promotion history and calendar rows into campaign records
// and judges realized campaigns against their targets.
type Classifier struct {
	cfg config.CampaignConfig
	now func() time.Time
}

func NewClassifier(cfg config.CampaignConfig) *Classifier {
	return &Classifier{cfg: cfg, now: time.Now}
}

// WithClock returns a copy of the classifier that reads the current time from now.
func (c *Classifier) WithClock(now func() time.Time) *Classifier {
	cp := *c
	cp.now = now
	return &cp
}

// FromHistory maps realized promotions to completed records. Rows without an
// event date or dated after today are skipped.
func (c *Classifier) FromHistory(rows []domain.RawCampaignRow) []domain.CampaignRecord {
	today := c.now().Format(dateLayout)
	records := make([]domain.CampaignRecord, 0, len(rows))

	for _, row := range rows {
		record := baseRecord(row)
		if record.EventDate == "" {
			continue
		}
		if record.EventDate > today {
			log.Debug().Str("campaign_key", record.Key).Str("event_date", record.EventDate).Msg("campaign: skipping future history row")
			continue
		}

		record.UpliftRaw = num(row, colUplift)
		record.UpliftValueRaw = num(row, colUpliftValue)
		record.ProfitRaw = num(row, colProfit)
		record.StockCostIncreaseRaw = num(row, colStockCostIncrease)
		record.LostSalesValRaw = num(row, colLostSalesValue)
		record.StockState = domain.ParseStockState(str(row, colStockState))
		record.ForecastAccuracyPercent = math.Min(100, math.Max(0, num(row, colForecastAccuracy)))

		if roi, ok := numOK(row, colROI); ok {
			record.ROI = forecast.Round2(roi)
		} else {
			record.ROI = ROI(record.ProfitRaw, record.UpliftValueRaw, record.StockCostIncreaseRaw)
		}

		record.Status = domain.CampaignStatusCompleted
		record.StatusLabel = record.Status.Label()
		records = append(records, record)
	}
	return records
}

// FromCalendar maps scheduled promotions to records with zeroed financials.
// An explicit planning status is kept unless it claims completion; otherwise
// events inside the pending window need action and later ones are drafts.
func (c *Classifier) FromCalendar(rows []domain.RawCampaignRow) []domain.CampaignRecord {
	now := c.now()
	pendingUntil := now.AddDate(0, 0, c.cfg.PendingWindowDays).Format(dateLayout)
	records := make([]domain.CampaignRecord, 0, len(rows))

	for _, row := range rows {
		record := baseRecord(row)
		if record.EventDate == "" {
			continue
		}
		record.DiscountPercent = num(row, colDiscount)
		record.StockState = domain.StockStateOK

		status, ok := domain.ParseCampaignStatus(str(row, colStatus))
		switch {
		case ok && status != domain.CampaignStatusCompleted:
			record.Status = status
		case record.StartDate <= pendingUntil:
			record.Status = domain.CampaignStatusPending
		default:
			record.Status = domain.CampaignStatusDraft
		}
		record.StatusLabel = record.Status.Label()
		records = append(records, record)
	}
	return records
}

// Track merges history and calendar records into the prioritized tracking list.
func (c *Classifier) Track(history, calendar []domain.RawCampaignRow) []domain.CampaignRecord {
	records := append(c.FromCalendar(calendar), c.FromHistory(history)...)
	SortForTracking(records)
	return records
}

// SortForTracking orders records pending, draft, approved, completed. Ties keep
// start date order, then key order.
func SortForTracking(records []domain.CampaignRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		pi, pj := records[i].Status.TrackingPriority(), records[j].Status.TrackingPriority()
		if pi != pj {
			return pi < pj
		}
		if records[i].StartDate != records[j].StartDate {
			return records[i].StartDate < records[j].StartDate
		}
		return records[i].Key < records[j].Key
	})
}

// IsSuccess reports whether a campaign hit its revenue target and stayed close to its stock plan.
func (c *Classifier) IsSuccess(targetRevenue, actualRevenue float64, plannedStockDays, actualStockDays int) bool {
	if targetRevenue <= 0 {
		return false
	}
	ratio := actualRevenue / targetRevenue
	deviation := plannedStockDays - actualStockDays
	if deviation < 0 {
		deviation = -deviation
	}
	return ratio >= c.cfg.SuccessAchievementRatio && deviation <= c.cfg.MaxStockDayDeviation
}

// IsStockIssue reports whether stock-outs covered more than half the planned days.
func IsStockIssue(stockOutDays, plannedStockDays int) bool {
	return float64(stockOutDays) > float64(plannedStockDays)/2
}

// ClassifyOutcomes splits realized campaigns into success stories and lost opportunities.
func (c *Classifier) ClassifyOutcomes(rows []domain.RawCampaignRow) domain.CampaignOutcomes {
	out := domain.CampaignOutcomes{
		SuccessStories:    []domain.CampaignOutcome{},
		LostOpportunities: []domain.CampaignOutcome{},
	}

	for _, row := range rows {
		outcome := c.outcome(row)
		if outcome.IsSuccess {
			out.SuccessStories = append(out.SuccessStories, outcome)
		} else {
			out.LostOpportunities = append(out.LostOpportunities, outcome)
		}
	}
	return out
}

func (c *Classifier) outcome(row domain.RawCampaignRow) domain.CampaignOutcome {
	record := baseRecord(row)

	o := domain.CampaignOutcome{
		Key:                record.Key,
		Name:               record.Name,
		EventDate:          record.EventDate,
		Type:               record.Type,
		LiftPercent:        forecast.Round2(num(row, colLift, colUplift)),
		TargetRevenue:      num(row, colTargetRevenue),
		ActualRevenue:      num(row, colActualRevenue),
		StockOutDays:       int(math.Max(0, num(row, colStockOutDays))),
		SellThroughPercent: forecast.Round2(num(row, colSellThrough)),
		MarkdownCost:       forecast.Round2(num(row, colMarkdownCost)),
	}

	if planned, ok := numOK(row, colPlannedStockDays); ok {
		o.PlannedStockDays = int(math.Max(0, planned))
	} else {
		o.PlannedStockDays = plannedDays(record.StartDate, record.EndDate)
	}
	if actual, ok := numOK(row, colActualStockDays); ok {
		o.ActualStockDays = int(math.Max(0, actual))
	} else {
		o.ActualStockDays = max(0, o.PlannedStockDays-o.StockOutDays)
	}

	if o.TargetRevenue > 0 {
		o.AchievementRatio = forecast.Round2(o.ActualRevenue / o.TargetRevenue)
	}
	o.IsSuccess = c.IsSuccess(o.TargetRevenue, o.ActualRevenue, o.PlannedStockDays, o.ActualStockDays)
	o.IsStockIssue = !o.IsSuccess && IsStockIssue(o.StockOutDays, o.PlannedStockDays)
	return o
}

// ROI is profit over the promotion's investment: the extra stock cost plus the
// part of the uplift that did not turn into profit. It is 0 when nothing was invested.
func ROI(profit, upliftValue, stockCostIncrease float64) float64 {
	investment := math.Max(0, stockCostIncrease) + math.Max(0, upliftValue-profit)
	if investment <= 0 {
		return 0
	}
	return forecast.Round2(profit / investment * 100)
}

func baseRecord(row domain.RawCampaignRow) domain.CampaignRecord {
	record := domain.CampaignRecord{
		EventDate:   date(row, colEventDate, colDate),
		Region:      str(row, colRegion),
		Category:    str(row, colCategory),
		StoreCode:   code(row, colStoreCode),
		ProductCode: code(row, colProductCode),
		Name:        str(row, colName),
		Type:        str(row, colTypeLabel, colType),
	}
	record.StartDate = date(row, colStartDate)
	if record.StartDate == "" {
		record.StartDate = record.EventDate
	}
	record.EndDate = date(row, colEndDate)
	if record.EndDate == "" {
		record.EndDate = record.StartDate
	}

	record.Key = str(row, colKey, colID)
	if record.Key == "" {
		record.Key = fallbackKey(row, record)
	}
	if record.Name == "" {
		record.Name = str(row, colPromoCode)
	}
	return record
}

func fallbackKey(row domain.RawCampaignRow, record domain.CampaignRecord) string {
	parts := []string{str(row, colPromoCode), record.EventDate}
	if record.StoreCode != nil {
		parts = append(parts, fmt.Sprintf("s%d", *record.StoreCode))
	}
	if record.ProductCode != nil {
		parts = append(parts, fmt.Sprintf("p%d", *record.ProductCode))
	}
	return strings.Join(parts, ":")
}
