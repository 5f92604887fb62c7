package jobs

import (
	"context"
	"time"

	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/andresuchdata/promolift/backend-go/pkg/metrics"
	"github.com/rs/zerolog/log"
)

const (
	ForecastCacheFlushJobName = "forecast_cache_flush"
	TrackingWarmupJobName     = "tracking_warmup"

	defaultJobTimeout = 2 * time.Minute
)

// CacheInvalidator drops every cached entry it owns.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

// TrackingRefresher recomputes a tracking list into the cache.
type TrackingRefresher interface {
	RefreshTracking(ctx context.Context, filter domain.CampaignFilter) (int, error)
}

// ForecastCacheFlushJob drops cached forecasts after the nightly data refresh.
type ForecastCacheFlushJob struct {
	cache   CacheInvalidator
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewForecastCacheFlushJob(cache CacheInvalidator, m *metrics.Metrics, timeout time.Duration) *ForecastCacheFlushJob {
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	return &ForecastCacheFlushJob{cache: cache, metrics: m, timeout: timeout}
}

func (j *ForecastCacheFlushJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	if err := j.cache.InvalidateCache(ctx); err != nil {
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("forecast cache flush failed")
		recordJob(j.metrics, ForecastCacheFlushJobName, "failure")
		return
	}

	log.Info().Dur("duration", time.Since(start)).Msg("forecast cache flushed")
	recordJob(j.metrics, ForecastCacheFlushJobName, "success")
}

// TrackingWarmupJob keeps the unfiltered tracking list hot in the cache.
type TrackingWarmupJob struct {
	refresher TrackingRefresher
	metrics   *metrics.Metrics
	timeout   time.Duration
}

func NewTrackingWarmupJob(refresher TrackingRefresher, m *metrics.Metrics, timeout time.Duration) *TrackingWarmupJob {
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	return &TrackingWarmupJob{refresher: refresher, metrics: m, timeout: timeout}
}

func (j *TrackingWarmupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	count, err := j.refresher.RefreshTracking(ctx, domain.CampaignFilter{})
	if err != nil {
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("tracking warmup failed")
		recordJob(j.metrics, TrackingWarmupJobName, "failure")
		return
	}

	log.Info().Int("campaigns", count).Dur("duration", time.Since(start)).Msg("tracking list warmed")
	recordJob(j.metrics, TrackingWarmupJobName, "success")
}

func recordJob(m *metrics.Metrics, job, status string) {
	if m != nil {
		m.RecordJobRun(job, status)
	}
}
