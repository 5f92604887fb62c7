package forecast

import (
	"context"
	"time"

	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/andresuchdata/promolift/backend-go/pkg/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Predictor issues a demand prediction for a single store.
type Predictor interface {
	Predict(ctx context.Context, call domain.PredictionCall) ([]domain.RawPredictionRow, error)
}

// FanoutStats reports how the per-store calls of one run settled.
type FanoutStats struct {
	Requested int
	Succeeded int
	Empty     int
	Failed    int
}

// Fanout runs one prediction call per store and joins on all of them.
type Fanout struct {
	predictor Predictor
	limit     int
	metrics   *metrics.Metrics
}

// NewFanout returns a fanout running at most limit calls at once. A limit of
// zero or less runs every store at once.
func NewFanout(predictor Predictor, limit int, m *metrics.Metrics) *Fanout {
	return &Fanout{predictor: predictor, limit: limit, metrics: m}
}

// Run calls the predictor for every store and returns the rows of the calls that
// succeeded, in store order. Failed calls are logged and dropped. When no call
// yields a row, Run returns domain.ErrNoForecastData.
func (f *Fanout) Run(ctx context.Context, req domain.ForecastRequest, productID int64, stores []int64) ([]domain.RawPredictionRow, FanoutStats, error) {
	stats := FanoutStats{Requested: len(stores)}
	if len(stores) == 0 {
		return nil, stats, domain.ErrNoStoresResolved
	}

	results := make([][]domain.RawPredictionRow, len(stores))
	failures := make([]error, len(stores))

	var g errgroup.Group
	if f.limit > 0 {
		g.SetLimit(f.limit)
	}

	for i, storeID := range stores {
		call := newPredictionCall(req, productID, storeID)
		g.Go(func() error {
			start := time.Now()
			rows, err := f.predictor.Predict(ctx, call)
			if err != nil {
				failures[i] = err
				log.Warn().
					Err(err).
					Int64("store_id", call.StoreID).
					Int64("product_id", call.ProductID).
					Dur("latency", time.Since(start)).
					Msg("forecast: store prediction failed")
				return nil
			}
			results[i] = rows
			return nil
		})
	}

	// Goroutines never return an error, so Wait is a pure all-settle barrier.
	_ = g.Wait()

	var rows []domain.RawPredictionRow
	for i := range stores {
		switch {
		case failures[i] != nil:
			stats.Failed++
			f.record("failure", 0)
		case len(results[i]) == 0:
			stats.Empty++
			f.record("empty", 0)
		default:
			stats.Succeeded++
			f.record("success", len(results[i]))
			rows = append(rows, results[i]...)
		}
	}

	if len(rows) == 0 {
		return nil, stats, domain.ErrNoForecastData
	}
	return rows, stats, nil
}

func (f *Fanout) record(outcome string, rows int) {
	if f.metrics != nil {
		f.metrics.RecordFanoutCall(outcome, rows)
	}
}

func newPredictionCall(req domain.ForecastRequest, productID, storeID int64) domain.PredictionCall {
	return domain.PredictionCall{
		StoreID:         storeID,
		ProductID:       productID,
		DateStart:       req.DateStart,
		DateEnd:         req.DateEnd,
		SpecialDayCount: req.SpecialDayCount,
		PromotionCode:   req.PromotionCode,
		DiscountPercent: req.DiscountPercent,
		TargetMargin:    req.TargetMargin,
		TargetPrice:     req.TargetPrice,
	}
}
