package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordFanoutCall("success", 3)
	m.RecordFanoutCall("failure", 0)
	m.RecordFanoutCall("success", 2)
	m.RecordExternalAPICall("prediction", "success", 20*time.Millisecond)
	m.RecordCacheLookup("forecast", "hit")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FanoutStoreCalls.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FanoutStoreCalls.WithLabelValues("failure")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.ForecastRowsReceived))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExternalAPICalls.WithLabelValues("prediction", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("forecast", "hit")))
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	require.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
