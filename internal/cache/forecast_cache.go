package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/promolift/backend-go/internal/config"
	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const forecastKeyPrefix = "promolift:forecast"

// ForecastKey identifies a forecast run after product and store resolution.
type ForecastKey struct {
	ProductID int64
	StoreIDs  []int64
	Request   domain.ForecastRequest
}

type ForecastCache interface {
	Get(ctx context.Context, key ForecastKey) (*domain.ForecastResult, bool, error)
	Set(ctx context.Context, key ForecastKey, result *domain.ForecastResult) error
	InvalidateAll(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg, cfg.ForecastTTLSeconds)
	if err != nil {
		return nil, err
	}

	return &redisForecastCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) Get(ctx context.Context, key ForecastKey) (*domain.ForecastResult, bool, error) {
	payload, err := c.client.Get(ctx, buildForecastKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var result domain.ForecastResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("decode forecast cache: %w", err)
	}
	return &result, true, nil
}

func (c *redisForecastCache) Set(ctx context.Context, key ForecastKey, result *domain.ForecastResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode forecast cache: %w", err)
	}

	if err := c.client.Set(ctx, buildForecastKey(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, forecastKeyPrefix, scanBatchSize)
}

func (n *noopForecastCache) Get(ctx context.Context, key ForecastKey) (*domain.ForecastResult, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) Set(ctx context.Context, key ForecastKey, result *domain.ForecastResult) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildForecastKey(key ForecastKey) string {
	return fmt.Sprintf("%s:%d:%s", forecastKeyPrefix, key.ProductID, forecastHash(key))
}

func forecastHash(key ForecastKey) string {
	req := key.Request
	periodStart, periodEnd := req.PromotionPeriod()
	// Matches the code the predictor receives, which is case sensitive.
	promo := req.PromotionCode
	if !domain.IsPromotionActive(promo) {
		promo = domain.NoPromotionCode
	}

	parts := []string{
		"date_start=" + req.DateStart,
		"date_end=" + req.DateEnd,
		"period_start=" + periodStart,
		"period_end=" + periodEnd,
		"promo=" + promo,
		fmt.Sprintf("special_days=%d", req.SpecialDayCount),
	}
	if len(key.StoreIDs) > 0 {
		parts = append(parts, "store_ids="+joinInt64s(key.StoreIDs))
	}
	if name := strings.TrimSpace(req.PromotionName); name != "" {
		parts = append(parts, "promo_name="+name)
	}
	if v := optionalFloat(req.DiscountPercent); v != "" {
		parts = append(parts, "discount="+v)
	}
	if v := optionalFloat(req.TargetMargin); v != "" {
		parts = append(parts, "margin="+v)
	}
	if v := optionalFloat(req.TargetPrice); v != "" {
		parts = append(parts, "price="+v)
	}

	return hashParts(parts)
}
