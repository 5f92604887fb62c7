package domain

// RawCampaignRow is an untyped history or calendar row as read from the promotion source.
type RawCampaignRow map[string]any

// CampaignFilter narrows history, calendar and outcome queries.
type CampaignFilter struct {
	Region      string
	Category    string
	ProductCode string
	StoreIDs    []int64
	DateFrom    string
	DateTo      string
}

// CampaignRecord unifies historical and planned promotions.
type CampaignRecord struct {
	Key                     string         `json:"key"`
	EventDate               string         `json:"event_date"`
	StartDate               string         `json:"start_date"`
	EndDate                 string         `json:"end_date"`
	Region                  string         `json:"region"`
	Category                string         `json:"category"`
	StoreCode               *int64         `json:"store_code"`
	ProductCode             *int64         `json:"product_code"`
	Name                    string         `json:"name"`
	Type                    string         `json:"type"`
	DiscountPercent         float64        `json:"discount_percent"`
	UpliftRaw               float64        `json:"uplift_raw"`
	UpliftValueRaw          float64        `json:"uplift_value_raw"`
	ProfitRaw               float64        `json:"profit_raw"`
	StockCostIncreaseRaw    float64        `json:"stock_cost_increase_raw"`
	LostSalesValRaw         float64        `json:"lost_sales_val_raw"`
	ROI                     float64        `json:"roi"`
	StockState              StockState     `json:"stock_state"`
	ForecastAccuracyPercent float64        `json:"forecast_accuracy_percent"`
	Status                  CampaignStatus `json:"status"`
	StatusLabel             string         `json:"status_label"`
}

// CampaignOutcome is a realized campaign judged against its revenue target and stock plan.
type CampaignOutcome struct {
	Key                string  `json:"key"`
	Name               string  `json:"name"`
	EventDate          string  `json:"event_date"`
	Type               string  `json:"type"`
	LiftPercent        float64 `json:"lift_percent"`
	TargetRevenue      float64 `json:"target_revenue"`
	ActualRevenue      float64 `json:"actual_revenue"`
	PlannedStockDays   int     `json:"planned_stock_days"`
	ActualStockDays    int     `json:"actual_stock_days"`
	StockOutDays       int     `json:"stock_out_days"`
	SellThroughPercent float64 `json:"sell_through_percent"`
	MarkdownCost       float64 `json:"markdown_cost"`
	AchievementRatio   float64 `json:"achievement_ratio"`
	IsSuccess          bool    `json:"is_success"`
	IsStockIssue       bool    `json:"is_stock_issue"`
}

// CampaignOutcomes splits realized campaigns into success stories and lost opportunities.
type CampaignOutcomes struct {
	SuccessStories    []CampaignOutcome `json:"success_stories"`
	LostOpportunities []CampaignOutcome `json:"lost_opportunities"`
}

// CampaignSeriesPoint is one day of a campaign detail series.
type CampaignSeriesPoint struct {
	Date           string  `json:"date" db:"date"`
	BaselineUnits  float64 `json:"baseline_units" db:"baseline_units"`
	ActualUnits    float64 `json:"actual_units" db:"actual_units"`
	StockUnits     float64 `json:"stock_units" db:"stock_units"`
	LostSalesUnits float64 `json:"lost_sales_units" db:"lost_sales_units"`
	Revenue        float64 `json:"revenue" db:"revenue"`
}

// CampaignPerformance summarizes a campaign's realized or projected financials.
type CampaignPerformance struct {
	TargetRevenue           float64 `json:"target_revenue"`
	ActualRevenue           float64 `json:"actual_revenue"`
	SoldUnits               float64 `json:"sold_units"`
	MarkdownCost            float64 `json:"markdown_cost"`
	SellThroughPercent      float64 `json:"sell_through_percent"`
	StockOutDays            int     `json:"stock_out_days"`
	PlannedStockDays        int     `json:"planned_stock_days"`
	ActualStockDays         int     `json:"actual_stock_days"`
	UpliftValue             float64 `json:"uplift_value"`
	ProfitEffect            float64 `json:"profit_effect"`
	ForecastAccuracyPercent float64 `json:"forecast_accuracy_percent"`
}

// CampaignDetailSeries is the optional daily series attached to one campaign.
type CampaignDetailSeries struct {
	Points  []CampaignSeriesPoint `json:"points"`
	Summary *CampaignPerformance  `json:"summary"`
}

// ChartUnit tells whether chart points carry units or revenue.
type ChartUnit string

const (
	ChartUnitUnits   ChartUnit = "units"
	ChartUnitRevenue ChartUnit = "revenue"
)

// ChartPoint is a single target-versus-actual point for the scorecard chart.
type ChartPoint struct {
	Label  string   `json:"label"`
	Target float64  `json:"target"`
	Actual float64  `json:"actual"`
	Stock  *float64 `json:"stock,omitempty"`
}

// Scorecard reports how a completed campaign performed.
type Scorecard struct {
	TargetRevenue           float64      `json:"target_revenue"`
	ActualRevenue           float64      `json:"actual_revenue"`
	AchievementPct          float64      `json:"achievement_pct"`
	UpliftValue             float64      `json:"uplift_value"`
	MarkdownCost            float64      `json:"markdown_cost"`
	NetContribution         float64      `json:"net_contribution"`
	StockOutDays            int          `json:"stock_out_days"`
	IsOOS                   bool         `json:"is_oos"`
	SellThroughPercent      float64      `json:"sell_through_percent"`
	ForecastAccuracyPercent float64      `json:"forecast_accuracy_percent"`
	ChartUnit               ChartUnit    `json:"chart_unit"`
	Chart                   []ChartPoint `json:"chart"`
	Synthetic               bool         `json:"synthetic"`
}

// Feasibility projects whether a planned campaign can be served.
type Feasibility struct {
	TargetRevenue    float64 `json:"target_revenue"`
	LiftValue        float64 `json:"lift_value"`
	StockCoveragePct float64 `json:"stock_coverage_pct"`
	ConfidenceScore  float64 `json:"confidence_score"`
	PlannedStockDays int     `json:"planned_stock_days"`
	ActualStockDays  int     `json:"actual_stock_days"`
	StockOutDays     int     `json:"stock_out_days"`
}

// CampaignDetail is the detail view of one campaign: a scorecard when completed, otherwise a feasibility projection.
type CampaignDetail struct {
	Record      CampaignRecord `json:"record"`
	Scorecard   *Scorecard     `json:"scorecard,omitempty"`
	Feasibility *Feasibility   `json:"feasibility,omitempty"`
	Warning     string         `json:"warning,omitempty"`
}
