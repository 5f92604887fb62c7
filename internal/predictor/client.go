// Package predictor calls the external demand prediction service.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andresuchdata/promolift/backend-go/internal/config"
	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/andresuchdata/promolift/backend-go/pkg/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	apiName     = "prediction"
	predictPath = "/predict-demand"
)

// envelopeKeys are the object keys that may wrap the row array in a response.
var envelopeKeys = []string{"data", "rows", "predictions", "forecast", "result"}

// Client implements forecast.Predictor over HTTP.
type Client struct {
	client      *http.Client
	baseURL     string
	metrics     *metrics.Metrics
	rateLimiter *rate.Limiter
}

// predictRequest is the prediction service's wire format.
type predictRequest struct {
	StoreCode       int64    `json:"magazaKodu"`
	ProductCode     int64    `json:"urunKodu"`
	DateStart       string   `json:"tarihBaslangic"`
	DateEnd         string   `json:"tarihBitis"`
	SpecialDayCount *int     `json:"ozelgunsayisi"`
	PromotionCode   string   `json:"aktifPromosyonKodu"`
	DiscountPercent *float64 `json:"istenenIndirim"`
	TargetMargin    *float64 `json:"istenenMarj"`
	TargetPrice     *float64 `json:"istenenFiyat"`
}

// NewClient builds a rate-limited client. When a token URL is configured, calls
// are authenticated with OAuth2 client credentials.
func NewClient(cfg config.PredictionConfig, m *metrics.Metrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	if cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = cc.Client(ctx)
		httpClient.Timeout = timeout
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		client:      httpClient,
		baseURL:     cfg.BaseURL,
		metrics:     m,
		rateLimiter: rate.NewLimiter(limit, burst),
	}
}

// Predict requests the daily forecast of one store.
func (c *Client) Predict(ctx context.Context, call domain.PredictionCall) ([]domain.RawPredictionRow, error) {
	start := time.Now()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		c.recordFailure("rate_limit")
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	payload, err := json.Marshal(newPredictRequest(call))
	if err != nil {
		c.recordFailure("json_marshal")
		return nil, fmt.Errorf("failed to marshal prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(payload))
	if err != nil {
		c.recordFailure("request_creation")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.recordFailure("network_error")
		return nil, fmt.Errorf("failed to call prediction service: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		c.recordCall(fmt.Sprintf("error_%d", resp.StatusCode), duration)
		return nil, fmt.Errorf("prediction service returned status %d for store %d", resp.StatusCode, call.StoreID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordFailure("read_body")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	rows, err := decodeRows(body)
	if err != nil {
		c.recordFailure("json_parse")
		return nil, fmt.Errorf("failed to parse prediction response: %w", err)
	}

	c.recordCall("success", duration)

	log.Debug().
		Int64("store_id", call.StoreID).
		Int64("product_id", call.ProductID).
		Dur("duration", duration).
		Int("rows", len(rows)).
		Msg("predictor: fetched store forecast")

	return rows, nil
}

func newPredictRequest(call domain.PredictionCall) predictRequest {
	req := predictRequest{
		StoreCode:     call.StoreID,
		ProductCode:   call.ProductID,
		DateStart:     call.DateStart,
		DateEnd:       call.DateEnd,
		PromotionCode: domain.NoPromotionCode,
	}
	if call.SpecialDayCount > 0 {
		days := call.SpecialDayCount
		req.SpecialDayCount = &days
	}
	if domain.IsPromotionActive(call.PromotionCode) {
		req.PromotionCode = call.PromotionCode
		req.DiscountPercent = call.DiscountPercent
		req.TargetMargin = call.TargetMargin
		req.TargetPrice = call.TargetPrice
	}
	return req
}

// decodeRows accepts a bare row array or an object wrapping one. Numbers are
// kept as json.Number so coercion sees the service's exact values.
func decodeRows(body []byte) ([]domain.RawPredictionRow, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}

	switch v := payload.(type) {
	case []any:
		return toRows(v), nil
	case map[string]any:
		for _, key := range envelopeKeys {
			if items, ok := v[key].([]any); ok {
				return toRows(items), nil
			}
		}
		return nil, fmt.Errorf("response object has none of %v", envelopeKeys)
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected response type %T", payload)
	}
}

func toRows(items []any) []domain.RawPredictionRow {
	rows := make([]domain.RawPredictionRow, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			rows = append(rows, domain.RawPredictionRow(m))
		}
	}
	return rows
}

func (c *Client) recordCall(status string, duration time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordExternalAPICall(apiName, status, duration)
	}
}

func (c *Client) recordFailure(errorType string) {
	if c.metrics != nil {
		c.metrics.RecordExternalAPIFailure(apiName, errorType)
	}
}
