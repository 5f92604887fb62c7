package predictor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresuchdata/promolift/backend-go/internal/config"
	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/andresuchdata/promolift/backend-go/internal/forecast"
	"github.com/andresuchdata/promolift/backend-go/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCall() domain.PredictionCall {
	discount := 20.0
	return domain.PredictionCall{
		StoreID:         1021,
		ProductID:       30045,
		DateStart:       "2024-05-01",
		DateEnd:         "2024-05-07",
		SpecialDayCount: 2,
		PromotionCode:   "P20",
		DiscountPercent: &discount,
	}
}

func TestClient_Predict(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/forecast/predict-demand", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"tarih":"2024-05-01","tahmin":12.5,"ciro":"1093.13"},{"tarih":"2024-05-02","tahmin":null}]}`))
	}))
	defer server.Close()

	m := metrics.New(prometheus.NewRegistry())
	client := NewClient(config.PredictionConfig{BaseURL: server.URL + "/api/forecast", Timeout: time.Second}, m)

	rows, err := client.Predict(context.Background(), testCall())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 12.5, forecast.Coerce(rows[0]["tahmin"], 0))
	assert.Equal(t, 1093.13, forecast.Coerce(rows[0]["ciro"], 0))

	assert.Equal(t, 1021.0, received["magazaKodu"])
	assert.Equal(t, 30045.0, received["urunKodu"])
	assert.Equal(t, "P20", received["aktifPromosyonKodu"])
	assert.Equal(t, 20.0, received["istenenIndirim"])
	assert.Nil(t, received["istenenMarj"])
	assert.Equal(t, 2.0, received["ozelgunsayisi"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExternalAPICalls.WithLabelValues("prediction", "success")))
}

func TestClient_PredictNoPromotion(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	call := testCall()
	call.PromotionCode = ""
	call.SpecialDayCount = 0

	rows, err := NewClient(config.PredictionConfig{BaseURL: server.URL}, nil).Predict(context.Background(), call)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, "none", received["aktifPromosyonKodu"])
	assert.Nil(t, received["istenenIndirim"])
	assert.Nil(t, received["ozelgunsayisi"])
}

func TestClient_PredictErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"detail":"boom"}`},
		{"malformed body", http.StatusOK, `{"data":`},
		{"unknown envelope", http.StatusOK, `{"items":[]}`},
		{"scalar body", http.StatusOK, `42`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(config.PredictionConfig{BaseURL: server.URL}, nil).Predict(context.Background(), testCall())
			assert.Error(t, err)
		})
	}
}

func TestClient_ClientCredentials(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"secret-token","token_type":"bearer","expires_in":3600}`))
	}))
	defer tokenServer.Close()

	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[{"tarih":"2024-05-01","tahmin":1}]`))
	}))
	defer server.Close()

	client := NewClient(config.PredictionConfig{
		BaseURL:      server.URL,
		TokenURL:     tokenServer.URL,
		ClientID:     "promolift",
		ClientSecret: "s3cret",
	}, nil)

	rows, err := client.Predict(context.Background(), testCall())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "Bearer secret-token", auth)
}

func TestDecodeRows_SkipsNonObjects(t *testing.T) {
	rows, err := decodeRows([]byte(`[{"tarih":"2024-05-01"}, 3, "x", null]`))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
