package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andresuchdata/promolift/backend-go/internal/api/middleware"
	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/andresuchdata/promolift/backend-go/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubForecaster struct {
	result *domain.ForecastResult
	err    error
	got    domain.ForecastRequest
}

func (s *stubForecaster) Forecast(ctx context.Context, req domain.ForecastRequest) (*domain.ForecastResult, error) {
	s.got = req
	return s.result, s.err
}

type stubCampaigns struct {
	records []domain.CampaignRecord
	detail  *domain.CampaignDetail
	err     error
	filter  domain.CampaignFilter
}

func (s *stubCampaigns) Tracking(ctx context.Context, filter domain.CampaignFilter) ([]domain.CampaignRecord, error) {
	s.filter = filter
	return s.records, s.err
}

func (s *stubCampaigns) Outcomes(ctx context.Context, filter domain.CampaignFilter) (*domain.CampaignOutcomes, error) {
	s.filter = filter
	return &domain.CampaignOutcomes{}, s.err
}

func (s *stubCampaigns) Detail(ctx context.Context, key string) (*domain.CampaignDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.detail, nil
}

func do(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestPredict_OK(t *testing.T) {
	forecaster := &stubForecaster{result: &domain.ForecastResult{RequestID: "abc", ProductID: 5}}
	router := NewRouter(&Services{ForecastService: forecaster}, Options{})

	w := do(t, router, http.MethodPost, "/api/v1/forecast/predict", map[string]any{
		"product_id": 5, "date_start": "2024-01-01", "date_end": "2024-01-03", "store_ids": []int{1, 2},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{1, 2}, forecaster.got.StoreIDs)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	var result domain.ForecastResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "abc", result.RequestID)
}

func TestPredict_ErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid promotion", domain.ErrInvalidPromotionInput, http.StatusBadRequest, domain.ErrInvalidPromotionInput.Error()},
		{"missing product", domain.ErrMissingProductSelection, http.StatusUnprocessableEntity, domain.ErrMissingProductSelection.Error()},
		{"no stores", domain.ErrNoStoresResolved, http.StatusUnprocessableEntity, domain.ErrNoStoresResolved.Error()},
		{"no data", domain.ErrNoForecastData, http.StatusNotFound, domain.ErrNoForecastData.Error()},
		{"wrapped validation", fmt.Errorf("%w: date_start is required", domain.ErrInvalidRequest), http.StatusBadRequest, "invalid request: date_start is required"},
		{"internal", errors.New("pq: connection reset"), http.StatusInternalServerError, "something went wrong, please try again later"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := NewRouter(&Services{ForecastService: &stubForecaster{err: tc.err}}, Options{})
			w := do(t, router, http.MethodPost, "/api/v1/forecast/predict", map[string]any{"date_start": "2024-01-01"})
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.message, errorBody(t, w))
		})
	}
}

func TestPredict_MalformedBody(t *testing.T) {
	router := NewRouter(&Services{ForecastService: &stubForecaster{}}, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/forecast/predict", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTracking_ParsesFilter(t *testing.T) {
	campaigns := &stubCampaigns{records: []domain.CampaignRecord{{Key: "a"}, {Key: "b"}}}
	router := NewRouter(&Services{CampaignService: campaigns}, Options{})

	w := do(t, router, http.MethodGet, "/api/v1/campaigns/tracking?region=West&store_ids=1,2&store_ids=3&store_ids=x", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "West", campaigns.filter.Region)
	assert.Equal(t, []int64{1, 2, 3}, campaigns.filter.StoreIDs)

	var body struct {
		Data  []domain.CampaignRecord `json:"data"`
		Total int                     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
}

func TestDetail_NotFound(t *testing.T) {
	router := NewRouter(&Services{CampaignService: &stubCampaigns{err: fmt.Errorf("%w: x", domain.ErrCampaignNotFound)}}, Options{})

	w := do(t, router, http.MethodGet, "/api/v1/campaigns/x/detail", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDetail_WarningPassesThrough(t *testing.T) {
	detail := &domain.CampaignDetail{
		Record:  domain.CampaignRecord{Key: "k"},
		Warning: domain.ErrDetailSeriesUnavailable.Error(),
	}
	router := NewRouter(&Services{CampaignService: &stubCampaigns{detail: detail}}, Options{})

	w := do(t, router, http.MethodGet, "/api/v1/campaigns/k/detail", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), domain.ErrDetailSeriesUnavailable.Error())
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	router := NewRouter(&Services{}, Options{Metrics: m, Gatherer: reg})

	w := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestRequestIDIsPropagated(t *testing.T) {
	router := NewRouter(nil, Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "given-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "given-id", w.Header().Get(middleware.RequestIDHeader))
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"https://a.example, https://b.example", " "})
	assert.False(t, all)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, origins)

	_, all = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, all)
}
