package forecast

import (
	"testing"
	"time"

	"github.com/andresuchdata/promolift/backend-go/internal/config"
	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_SumsAdditiveFields(t *testing.T) {
	rows := []domain.RawPredictionRow{
		{"tarih": "2024-05-01T00:00:00", "tahmin": 5, "baseline": 4, "ciro": "100.5", "weather": "rain"},
		{"tarih": "2024-05-01", "tahmin": nil, "roll_mean_7": 3, "ciro": 50, "weather": "sun"},
		{"tarih": "2024-05-01 12:00", "tahmin": "7", "baseline": "bad", "stok": 10},
	}

	out := Aggregate(rows)
	require.Len(t, out, 1)

	row := out[0]
	assert.Equal(t, "2024-05-01", row["tarih"])
	assert.Equal(t, 12.0, row["tahmin"])
	assert.Equal(t, 7.0, row["baseline"])
	assert.Equal(t, 150.5, row["ciro"])
	assert.Equal(t, 10.0, row["stok"])
	assert.Equal(t, "rain", row["weather"], "non-additive fields come from the first row")
}

func TestAggregate_SortsAndDropsUndated(t *testing.T) {
	rows := []domain.RawPredictionRow{
		{"tarih": "2024-05-03", "tahmin": 1},
		{"tahmin": 99},
		{"tarih": "", "tahmin": 99},
		{"date": time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "tahmin": 2},
		{"tarih": "2024-05-02", "tahmin": 3},
	}

	out := Aggregate(rows)
	require.Len(t, out, 3)
	assert.Equal(t, "2024-05-01", out[0]["tarih"])
	assert.Equal(t, "2024-05-02", out[1]["tarih"])
	assert.Equal(t, "2024-05-03", out[2]["tarih"])
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	first := domain.RawPredictionRow{"tarih": "2024-05-01", "tahmin": 1}
	second := domain.RawPredictionRow{"tarih": "2024-05-01", "tahmin": 2}

	Aggregate([]domain.RawPredictionRow{first, second})
	assert.Equal(t, 1, first["tahmin"])
}

func TestAggregate_LeavesAbsentFieldsAbsent(t *testing.T) {
	out := Aggregate([]domain.RawPredictionRow{
		{"tarih": "2024-05-01", "tahmin": 1},
		{"tarih": "2024-05-01", "tahmin": 2},
	})
	require.Len(t, out, 1)
	_, hasStock := out[0]["stok"]
	assert.False(t, hasStock)
}

func TestBackfillStock(t *testing.T) {
	rows := []domain.RawPredictionRow{
		{"tarih": "2024-05-01", "stok": 5},
		{"tarih": "2024-05-02"},
		{"tarih": "2024-05-03", "stok": "n/a"},
		{"tarih": "2024-05-04"},
	}

	assert.Equal(t, []string{"2024-05-02", "2024-05-03", "2024-05-04"}, MissingStockDates(rows))

	filled := BackfillStock(rows, map[string]float64{"2024-05-01": 100, "2024-05-02": 20, "2024-05-03": 30})
	assert.Equal(t, 2, filled)
	assert.Equal(t, 5, rows[0]["stok"])
	assert.Equal(t, 20.0, rows[1]["stok"])
	assert.Equal(t, 30.0, rows[2]["stok"])
	_, ok := rows[3]["stok"]
	assert.False(t, ok)
}

func TestAggregate_IgnoresNonNumericWhenSumming(t *testing.T) {
	out := Aggregate([]domain.RawPredictionRow{
		{"tarih": "2024-05-01", "tahmin": "n/a", "ciro": 10},
		{"tarih": "2024-05-01", "ciro": "bad"},
	})
	require.Len(t, out, 1)
	assert.Equal(t, "n/a", out[0]["tahmin"], "stays unparsed when no store reports a number")
	assert.Equal(t, 10.0, out[0]["ciro"])

	series, err := NewMapper(config.DefaultForecastConfig()).Map(out, Promotion{Code: "none"})
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Nil(t, series[0].ForecastUnits)

	single, err := NewMapper(config.DefaultForecastConfig()).Map([]domain.RawPredictionRow{
		{"tarih": "2024-05-01", "tahmin": "n/a"},
	}, Promotion{Code: "none"})
	require.NoError(t, err)
	assert.Nil(t, single[0].ForecastUnits)
}
