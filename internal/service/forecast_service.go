package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/promolift/backend-go/internal/cache"
	"github.com/andresuchdata/promolift/backend-go/internal/config"
	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/andresuchdata/promolift/backend-go/internal/forecast"
	"github.com/andresuchdata/promolift/backend-go/internal/repository"
	"github.com/andresuchdata/promolift/backend-go/pkg/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ForecastService struct {
	catalog repository.CatalogRepository
	stock   repository.StockTrendRepository
	fanout  *forecast.Fanout
	mapper  *forecast.Mapper
	reducer *forecast.Reducer
	cache   cache.ForecastCache
	metrics *metrics.Metrics
}

func NewForecastService(
	catalog repository.CatalogRepository,
	stock repository.StockTrendRepository,
	fanout *forecast.Fanout,
	cfg config.ForecastConfig,
	cacheImpl cache.ForecastCache,
	m *metrics.Metrics,
) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	return &ForecastService{
		catalog: catalog,
		stock:   stock,
		fanout:  fanout,
		mapper:  forecast.NewMapper(cfg),
		reducer: forecast.NewReducer(cfg),
		cache:   cacheImpl,
		metrics: m,
	}
}

// Forecast runs the full pipeline for one request: validate, resolve product
// and stores, fan out, aggregate, backfill stock, map and reduce.
func (s *ForecastService) Forecast(ctx context.Context, req domain.ForecastRequest) (*domain.ForecastResult, error) {
	start := time.Now()
	result, err := s.run(ctx, req)
	s.recordRun(err, time.Since(start))
	return result, err
}

func (s *ForecastService) run(ctx context.Context, req domain.ForecastRequest) (*domain.ForecastResult, error) {
	if err := ValidateForecastRequest(req); err != nil {
		return nil, err
	}

	productID, err := s.resolveProduct(ctx, req)
	if err != nil {
		return nil, err
	}

	stores, err := s.resolveStores(ctx, req, productID)
	if err != nil {
		return nil, err
	}

	key := cache.ForecastKey{ProductID: productID, StoreIDs: stores, Request: req}
	if cached, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		s.recordCache("hit")
		cached.RequestID = uuid.NewString()
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast: cache get failed")
	}
	s.recordCache("miss")

	rows, stats, err := s.fanout.Run(ctx, req, productID, stores)
	if err != nil {
		return nil, err
	}

	aggregated := forecast.Aggregate(rows)
	s.backfillStock(ctx, aggregated, productID, stores, req)

	series, err := s.mapper.Map(aggregated, forecast.PromotionFromRequest(req))
	if err != nil {
		return nil, err
	}

	periodStart, periodEnd := req.PromotionPeriod()
	result := &domain.ForecastResult{
		RequestID:       uuid.NewString(),
		ProductID:       productID,
		StoreIDs:        stores,
		StoresSucceeded: stats.Succeeded,
		Series:          series,
		Period:          s.reducer.Reduce(series, periodStart, periodEnd),
	}

	log.Info().
		Str("request_id", result.RequestID).
		Int64("product_id", productID).
		Int("stores_requested", stats.Requested).
		Int("stores_succeeded", stats.Succeeded).
		Int("stores_failed", stats.Failed).
		Int("days", len(series)).
		Msg("forecast: run complete")

	if err := s.cache.Set(ctx, key, result); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set failed")
	}
	return result, nil
}

func (s *ForecastService) resolveProduct(ctx context.Context, req domain.ForecastRequest) (int64, error) {
	if req.ProductID != nil {
		return *req.ProductID, nil
	}
	if req.ProductCode == "" {
		return 0, domain.ErrMissingProductSelection
	}

	id, ok, err := s.catalog.ResolveProduct(ctx, req.ProductCode)
	if err != nil {
		return 0, fmt.Errorf("resolve product: %w", err)
	}
	if !ok {
		return 0, domain.ErrMissingProductSelection
	}
	return id, nil
}

// resolveStores prefers explicit IDs, then the stores carrying the product,
// then every store matching the filter.
func (s *ForecastService) resolveStores(ctx context.Context, req domain.ForecastRequest, productID int64) ([]int64, error) {
	if len(req.StoreIDs) > 0 {
		return req.StoreIDs, nil
	}

	filter := domain.CatalogFilter{
		Region:      req.Region,
		Category:    req.Category,
		ProductCode: req.ProductCode,
	}

	stores, err := s.catalog.StoresForProduct(ctx, productID, filter)
	if err != nil {
		return nil, fmt.Errorf("resolve stores: %w", err)
	}
	if len(stores) > 0 {
		return stores, nil
	}

	stores, err = s.catalog.AllStores(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("resolve stores: %w", err)
	}
	if len(stores) == 0 {
		return nil, domain.ErrNoStoresResolved
	}
	return stores, nil
}

func (s *ForecastService) backfillStock(ctx context.Context, rows []domain.RawPredictionRow, productID int64, stores []int64, req domain.ForecastRequest) {
	missing := forecast.MissingStockDates(rows)
	if len(missing) == 0 || s.stock == nil {
		return
	}

	stockByDate, err := s.stock.StockByDate(ctx, productID, stores, missing[0], missing[len(missing)-1])
	if err != nil {
		log.Warn().Err(err).Int64("product_id", productID).Int("missing_days", len(missing)).Msg("forecast: stock backfill failed")
		return
	}

	filled := forecast.BackfillStock(rows, stockByDate)
	log.Debug().Int("filled", filled).Int("missing", len(missing)).Str("date_start", req.DateStart).Msg("forecast: stock backfilled")
}

func (s *ForecastService) recordRun(err error, d time.Duration) {
	if s.metrics == nil {
		return
	}
	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidPromotionInput):
		status = "invalid"
	case errors.Is(err, domain.ErrNoForecastData):
		status = "no_data"
	default:
		status = "error"
	}
	s.metrics.RecordForecastRun(status, d)
}

func (s *ForecastService) recordCache(result string) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup("forecast", result)
	}
}

// InvalidateCache drops every cached forecast.
func (s *ForecastService) InvalidateCache(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}
