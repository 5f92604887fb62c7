// backend-go/internal/domain/forecast.go
package domain

// NoPromotionCode marks a request that forecasts without an active promotion.
const NoPromotionCode = "none"

// ForecastRequest describes one demand forecast run across stores for a product.
type ForecastRequest struct {
	StoreIDs        []int64  `json:"store_ids" validate:"omitempty,unique,dive,gt=0"`
	ProductID       *int64   `json:"product_id" validate:"omitempty,gt=0"`
	ProductCode     string   `json:"product_code"`
	Region          string   `json:"region"`
	Category        string   `json:"category"`
	DateStart       string   `json:"date_start" validate:"required,datetime=2006-01-02"`
	DateEnd         string   `json:"date_end" validate:"required,datetime=2006-01-02"`
	PromotionCode   string   `json:"promotion_code"`
	PromotionName   string   `json:"promotion_name"`
	DiscountPercent *float64 `json:"discount_percent" validate:"omitempty,gte=0,lte=100"`
	TargetMargin    *float64 `json:"target_margin" validate:"omitempty,gte=0,lte=100"`
	TargetPrice     *float64 `json:"target_price" validate:"omitempty,gt=0"`
	SpecialDayCount int      `json:"special_day_count" validate:"gte=0"`
	PeriodStart     string   `json:"period_start" validate:"omitempty,datetime=2006-01-02"`
	PeriodEnd       string   `json:"period_end" validate:"omitempty,datetime=2006-01-02"`
}

// HasPromotion reports whether the request carries an active promotion code.
func (r ForecastRequest) HasPromotion() bool {
	return IsPromotionActive(r.PromotionCode)
}

// IsPromotionActive treats an empty code the same as the explicit "none" code.
func IsPromotionActive(code string) bool {
	return code != "" && code != NoPromotionCode
}

// PromotionPeriod returns the sub-window used for KPI reduction, defaulting to the request range.
func (r ForecastRequest) PromotionPeriod() (string, string) {
	start, end := r.PeriodStart, r.PeriodEnd
	if start == "" {
		start = r.DateStart
	}
	if end == "" {
		end = r.DateEnd
	}
	return start, end
}

// PredictionCall is a single per-store call issued by the fanout.
type PredictionCall struct {
	StoreID         int64
	ProductID       int64
	DateStart       string
	DateEnd         string
	SpecialDayCount int
	PromotionCode   string
	DiscountPercent *float64
	TargetMargin    *float64
	TargetPrice     *float64
}

// RawPredictionRow is an untyped row as returned by the prediction service.
type RawPredictionRow map[string]any

// Weather is the three-valued daily weather category.
type Weather string

const (
	WeatherSun   Weather = "sun"
	WeatherCloud Weather = "cloud"
	WeatherRain  Weather = "rain"
)

// ForecastData is the canonical per-date forecast record.
type ForecastData struct {
	Date                string   `json:"date"`
	BaselineUnits       int      `json:"baseline_units"`
	ForecastUnits       *int     `json:"forecast_units"`
	UnitsSold           int      `json:"units_sold"`
	PromotionLabels     []string `json:"promotion_labels"`
	DiscountPercent     float64  `json:"discount_percent"`
	Revenue             float64  `json:"revenue"`
	StockUnits          int      `json:"stock_units"`
	SellingPrice        float64  `json:"selling_price"`
	CostPrice           float64  `json:"cost_price"`
	UnitMargin          float64  `json:"unit_margin"`
	MarginPercent       float64  `json:"margin_percent"`
	DailyProfit         float64  `json:"daily_profit"`
	Weather             Weather  `json:"weather"`
	LostSalesUnits      int      `json:"lost_sales_units"`
	UnconstrainedDemand *int     `json:"unconstrained_demand"`
}

// Forecast returns the forecast units, treating a null forecast as zero.
func (d ForecastData) Forecast() int {
	if d.ForecastUnits == nil {
		return 0
	}
	return *d.ForecastUnits
}

// RequiredStock is the stock a day needs to avoid lost sales.
func (d ForecastData) RequiredStock() int {
	if d.UnconstrainedDemand != nil {
		return *d.UnconstrainedDemand
	}
	return d.Forecast()
}

// PromotionPeriodMetrics holds the KPIs of a forecast series restricted to a date window.
type PromotionPeriodMetrics struct {
	PeriodStart             string  `json:"period_start"`
	PeriodEnd               string  `json:"period_end"`
	DayCount                int     `json:"day_count"`
	TotalForecastUnits      int     `json:"total_forecast_units"`
	TotalRevenue            float64 `json:"total_revenue"`
	TotalBaselineRevenue    float64 `json:"total_baseline_revenue"`
	TotalProfit             float64 `json:"total_profit"`
	TotalLostSalesUnits     int     `json:"total_lost_sales_units"`
	LiftAmount              float64 `json:"lift_amount"`
	LiftPercentage          float64 `json:"lift_percentage"`
	StockOutDayCount        int     `json:"stock_out_day_count"`
	EstimatedRevenueLoss    float64 `json:"estimated_revenue_loss"`
	StockCostEstimate       float64 `json:"stock_cost_estimate"`
	RequiredDailyMinStock   int     `json:"required_daily_min_stock"`
	MarkdownCost            float64 `json:"markdown_cost"`
	SellThroughPercent      float64 `json:"sell_through_percent"`
	ForecastAccuracyPercent float64 `json:"forecast_accuracy_percent"`
}

// ForecastResult is the response of a complete forecast run.
type ForecastResult struct {
	RequestID       string                 `json:"request_id"`
	ProductID       int64                  `json:"product_id"`
	StoreIDs        []int64                `json:"store_ids"`
	StoresSucceeded int                    `json:"stores_succeeded"`
	Series          []ForecastData         `json:"series"`
	Period          PromotionPeriodMetrics `json:"period"`
}

// CatalogFilter narrows store and product resolution.
type CatalogFilter struct {
	Region      string
	Category    string
	ProductCode string
	StoreIDs    []int64
}
