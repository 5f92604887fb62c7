package campaign

import (
	"testing"
	"time"

	"github.com/andresuchdata/promolift/backend-go/internal/config"
	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestClassifier() *Classifier {
	return NewClassifier(config.DefaultCampaignConfig()).WithClock(func() time.Time { return fixedNow })
}

func TestClassifier_FromHistory(t *testing.T) {
	rows := []domain.RawCampaignRow{
		{
			"campaign_key":        "SPRING-24",
			"event_date":          time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
			"start_date":          "2024-04-10",
			"end_date":            "2024-04-16",
			"store_code":          []byte("1021"),
			"product_code":        "30045",
			"name":                "Spring Sale",
			"type_label":          "Discount",
			"uplift":              "12.5",
			"uplift_value":        2500,
			"profit":              800,
			"stock_cost_increase": 200,
			"lost_sales_value":    "150.75",
			"stock_state":         "oos",
			"forecast_accuracy":   104,
		},
		{"campaign_key": "FUTURE", "event_date": "2024-07-01"},
		{"campaign_key": "UNDATED"},
		{"campaign_key": "GIVEN-ROI", "event_date": "2024-05-01", "roi": "310.456"},
	}

	records := newTestClassifier().FromHistory(rows)
	require.Len(t, records, 2)

	r := records[0]
	assert.Equal(t, "SPRING-24", r.Key)
	assert.Equal(t, "2024-04-10", r.EventDate)
	assert.Equal(t, "2024-04-16", r.EndDate)
	require.NotNil(t, r.StoreCode)
	assert.Equal(t, int64(1021), *r.StoreCode)
	require.NotNil(t, r.ProductCode)
	assert.Equal(t, int64(30045), *r.ProductCode)
	assert.Equal(t, "Discount", r.Type)
	assert.Equal(t, 12.5, r.UpliftRaw)
	assert.Equal(t, 150.75, r.LostSalesValRaw)
	assert.Equal(t, domain.StockStateOOS, r.StockState)
	assert.Equal(t, 100.0, r.ForecastAccuracyPercent)
	assert.Equal(t, domain.CampaignStatusCompleted, r.Status)
	// 800 / (200 + (2500 - 800)) * 100
	assert.Equal(t, 42.11, r.ROI)

	assert.Equal(t, "GIVEN-ROI", records[1].Key)
	assert.Equal(t, 310.46, records[1].ROI)
	assert.Equal(t, domain.CampaignStatusCompleted, records[1].Status)
}

func TestClassifier_FromCalendar(t *testing.T) {
	rows := []domain.RawCampaignRow{
		{"id": "a", "date": "2024-06-05", "name": "Soon", "discount": "15"},
		{"id": "b", "date": "2024-08-01", "name": "Later"},
		{"id": "c", "date": "2024-08-01", "status": "APPROVED"},
		{"id": "d", "date": "2024-09-01", "status": "completed"},
		{"id": "e", "date": "2024-06-03", "status": "draft"},
	}

	records := newTestClassifier().FromCalendar(rows)
	require.Len(t, records, 5)

	statuses := map[string]domain.CampaignStatus{}
	for _, r := range records {
		statuses[r.Key] = r.Status
		assert.Zero(t, r.UpliftValueRaw)
		assert.Zero(t, r.ProfitRaw)
		assert.Zero(t, r.ROI)
	}

	assert.Equal(t, domain.CampaignStatusPending, statuses["a"])
	assert.Equal(t, domain.CampaignStatusDraft, statuses["b"])
	assert.Equal(t, domain.CampaignStatusApproved, statuses["c"])
	assert.Equal(t, domain.CampaignStatusDraft, statuses["d"], "calendar rows never become completed")
	assert.Equal(t, domain.CampaignStatusDraft, statuses["e"])
	assert.Equal(t, 15.0, records[0].DiscountPercent)
}

func TestSortForTracking(t *testing.T) {
	records := []domain.CampaignRecord{
		{Key: "1", Status: domain.CampaignStatusCompleted},
		{Key: "2", Status: domain.CampaignStatusDraft},
		{Key: "3", Status: domain.CampaignStatusPending},
		{Key: "4", Status: domain.CampaignStatusApproved},
	}

	SortForTracking(records)

	got := make([]domain.CampaignStatus, len(records))
	for i, r := range records {
		got[i] = r.Status
	}
	assert.Equal(t, []domain.CampaignStatus{
		domain.CampaignStatusPending,
		domain.CampaignStatusDraft,
		domain.CampaignStatusApproved,
		domain.CampaignStatusCompleted,
	}, got)
}

func TestClassifier_Track(t *testing.T) {
	history := []domain.RawCampaignRow{{"campaign_key": "h1", "event_date": "2024-05-01"}}
	calendar := []domain.RawCampaignRow{
		{"id": "c2", "date": "2024-09-01"},
		{"id": "c1", "date": "2024-06-02"},
	}

	records := newTestClassifier().Track(history, calendar)
	require.Len(t, records, 3)
	assert.Equal(t, "c1", records[0].Key)
	assert.Equal(t, "c2", records[1].Key)
	assert.Equal(t, "h1", records[2].Key)
}

func TestClassifier_IsSuccess(t *testing.T) {
	c := newTestClassifier()

	assert.True(t, c.IsSuccess(1000, 960, 7, 5))
	assert.True(t, c.IsSuccess(1000, 950, 7, 10))
	assert.False(t, c.IsSuccess(1000, 800, 7, 7))
	assert.False(t, c.IsSuccess(1000, 1200, 7, 3))
	assert.False(t, c.IsSuccess(0, 500, 7, 7))
}

func TestClassifier_ClassifyOutcomes(t *testing.T) {
	rows := []domain.RawCampaignRow{
		{"campaign_key": "win", "target_revenue": 1000, "actual_revenue": 960, "planned_stock_days": 7, "actual_stock_days": 5},
		{"campaign_key": "miss", "target_revenue": 1000, "actual_revenue": 800, "planned_stock_days": 7, "actual_stock_days": 7, "stock_out_days": 1},
		{"campaign_key": "oos", "target_revenue": "1000", "actual_revenue": "900", "start_date": "2024-05-01", "end_date": "2024-05-10", "stock_out_days": 6},
	}

	out := newTestClassifier().ClassifyOutcomes(rows)
	require.Len(t, out.SuccessStories, 1)
	require.Len(t, out.LostOpportunities, 2)

	assert.Equal(t, "win", out.SuccessStories[0].Key)
	assert.Equal(t, 0.96, out.SuccessStories[0].AchievementRatio)

	miss := out.LostOpportunities[0]
	assert.Equal(t, "miss", miss.Key)
	assert.False(t, miss.IsStockIssue)

	oos := out.LostOpportunities[1]
	assert.Equal(t, 10, oos.PlannedStockDays)
	assert.Equal(t, 4, oos.ActualStockDays)
	assert.True(t, oos.IsStockIssue)
}

func TestROI(t *testing.T) {
	assert.Equal(t, 0.0, ROI(0, 0, 0))
	assert.Equal(t, 100.0, ROI(100, 100, 100))
	assert.Equal(t, 0.0, ROI(500, 400, 0), "fully converted uplift with no stock cost has no investment")
}
