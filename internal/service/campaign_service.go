package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/promolift/backend-go/internal/cache"
	"github.com/andresuchdata/promolift/backend-go/internal/campaign"
	"github.com/andresuchdata/promolift/backend-go/internal/config"
	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/andresuchdata/promolift/backend-go/internal/repository"
	"github.com/andresuchdata/promolift/backend-go/pkg/metrics"
	"github.com/rs/zerolog/log"
)

// Days of daily series shown around a campaign window.
const (
	seriesDaysBefore = 7
	seriesDaysAfter  = 7
)

type CampaignService struct {
	repo        repository.PromotionRepository
	classifier  *campaign.Classifier
	synthesizer *campaign.Synthesizer
	cache       cache.TrackingCache
	metrics     *metrics.Metrics
}

func NewCampaignService(repo repository.PromotionRepository, cfg config.CampaignConfig, cacheImpl cache.TrackingCache, m *metrics.Metrics) *CampaignService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopTrackingCache()
	}
	return &CampaignService{
		repo:        repo,
		classifier:  campaign.NewClassifier(cfg),
		synthesizer: campaign.NewSynthesizer(cfg),
		cache:       cacheImpl,
		metrics:     m,
	}
}

// WithClock makes status and history cutoffs read the current time from now.
func (s *CampaignService) WithClock(now func() time.Time) *CampaignService {
	s.classifier = s.classifier.WithClock(now)
	return s
}

// Tracking returns history and calendar campaigns in tracking order.
func (s *CampaignService) Tracking(ctx context.Context, filter domain.CampaignFilter) ([]domain.CampaignRecord, error) {
	if records, ok, err := s.cache.GetTracking(ctx, filter); err == nil && ok {
		s.recordCache("hit")
		return records, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("campaign: cache get tracking failed")
	}
	s.recordCache("miss")

	records, err := s.loadTracking(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetTracking(ctx, filter, records); err != nil {
		log.Warn().Err(err).Msg("campaign: cache set tracking failed")
	}
	return records, nil
}

// RefreshTracking recomputes the tracking list for filter and overwrites the cached copy.
func (s *CampaignService) RefreshTracking(ctx context.Context, filter domain.CampaignFilter) (int, error) {
	records, err := s.loadTracking(ctx, filter)
	if err != nil {
		return 0, err
	}
	if err := s.cache.SetTracking(ctx, filter, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *CampaignService) loadTracking(ctx context.Context, filter domain.CampaignFilter) ([]domain.CampaignRecord, error) {
	history, err := s.repo.History(ctx, filter)
	if err != nil {
		return nil, err
	}
	calendar, err := s.repo.Calendar(ctx, filter)
	if err != nil {
		return nil, err
	}

	records := s.classifier.Track(history, calendar)
	if records == nil {
		records = make([]domain.CampaignRecord, 0)
	}
	return records, nil
}

// Outcomes splits realized campaigns into success stories and lost opportunities.
func (s *CampaignService) Outcomes(ctx context.Context, filter domain.CampaignFilter) (*domain.CampaignOutcomes, error) {
	history, err := s.repo.History(ctx, filter)
	if err != nil {
		return nil, err
	}
	outcomes := s.classifier.ClassifyOutcomes(history)
	return &outcomes, nil
}

// Detail builds the scorecard or feasibility view of one campaign. A failure to
// load the daily series degrades to derived figures with a warning.
func (s *CampaignService) Detail(ctx context.Context, key string) (*domain.CampaignDetail, error) {
	record, err := s.findRecord(ctx, key)
	if err != nil {
		return nil, err
	}

	series, seriesErr := s.repo.DetailSeries(ctx, repository.DetailSeriesQuery{
		CampaignKey:      record.Key,
		StoreCode:        record.StoreCode,
		ProductCode:      record.ProductCode,
		StartDate:        firstNonEmpty(record.StartDate, record.EventDate),
		EndDate:          record.EndDate,
		WindowDaysBefore: seriesDaysBefore,
		WindowDaysAfter:  seriesDaysAfter,
	})
	if seriesErr != nil {
		log.Warn().Err(seriesErr).Str("campaign_key", record.Key).Msg("campaign: detail series unavailable")
		series = nil
	}

	detail := s.synthesizer.Detail(record, series)
	if seriesErr != nil {
		detail.Warning = domain.ErrDetailSeriesUnavailable.Error()
	}
	return &detail, nil
}

// findRecord looks the key up in history first, then in the calendar, then
// among the derived keys of all history rows.
func (s *CampaignService) findRecord(ctx context.Context, key string) (domain.CampaignRecord, error) {
	if row, ok, err := s.repo.FindHistory(ctx, key); err != nil {
		return domain.CampaignRecord{}, err
	} else if ok {
		if records := s.classifier.FromHistory([]domain.RawCampaignRow{row}); len(records) == 1 {
			return records[0], nil
		}
	}

	if row, ok, err := s.repo.FindCalendar(ctx, key); err != nil {
		return domain.CampaignRecord{}, err
	} else if ok {
		if records := s.classifier.FromCalendar([]domain.RawCampaignRow{row}); len(records) == 1 {
			return records[0], nil
		}
	}

	history, err := s.repo.History(ctx, domain.CampaignFilter{})
	if err != nil {
		return domain.CampaignRecord{}, err
	}
	for _, record := range s.classifier.FromHistory(history) {
		if record.Key == key {
			return record, nil
		}
	}
	return domain.CampaignRecord{}, fmt.Errorf("%w: %s", domain.ErrCampaignNotFound, key)
}

// InvalidateCache drops every cached tracking list.
func (s *CampaignService) InvalidateCache(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

func (s *CampaignService) recordCache(result string) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup("tracking", result)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
