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

const trackingKeyPrefix = "promolift:tracking"

type TrackingCache interface {
	GetTracking(ctx context.Context, filter domain.CampaignFilter) ([]domain.CampaignRecord, bool, error)
	SetTracking(ctx context.Context, filter domain.CampaignFilter, records []domain.CampaignRecord) error
	InvalidateAll(ctx context.Context) error
}

type redisTrackingCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopTrackingCache struct{}

func NewTrackingCache(cfg config.CacheConfig) (TrackingCache, error) {
	if !cfg.Enabled {
		return &noopTrackingCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg, cfg.TrackingTTLSeconds)
	if err != nil {
		return nil, err
	}

	return &redisTrackingCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopTrackingCache() TrackingCache {
	return &noopTrackingCache{}
}

func (c *redisTrackingCache) GetTracking(ctx context.Context, filter domain.CampaignFilter) ([]domain.CampaignRecord, bool, error) {
	payload, err := c.client.Get(ctx, buildTrackingKey(filter)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var records []domain.CampaignRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, false, fmt.Errorf("decode tracking cache: %w", err)
	}
	return records, true, nil
}

func (c *redisTrackingCache) SetTracking(ctx context.Context, filter domain.CampaignFilter, records []domain.CampaignRecord) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode tracking cache: %w", err)
	}

	if err := c.client.Set(ctx, buildTrackingKey(filter), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisTrackingCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, trackingKeyPrefix, scanBatchSize)
}

func (n *noopTrackingCache) GetTracking(ctx context.Context, filter domain.CampaignFilter) ([]domain.CampaignRecord, bool, error) {
	return nil, false, nil
}

func (n *noopTrackingCache) SetTracking(ctx context.Context, filter domain.CampaignFilter, records []domain.CampaignRecord) error {
	return nil
}

func (n *noopTrackingCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildTrackingKey(filter domain.CampaignFilter) string {
	return fmt.Sprintf("%s:%s", trackingKeyPrefix, campaignFilterHash(filter))
}

func campaignFilterHash(filter domain.CampaignFilter) string {
	parts := []string{}

	if v := strings.TrimSpace(filter.Region); v != "" {
		parts = append(parts, "region="+strings.ToLower(v))
	}
	if v := strings.TrimSpace(filter.Category); v != "" {
		parts = append(parts, "category="+strings.ToLower(v))
	}
	if v := strings.TrimSpace(filter.ProductCode); v != "" {
		parts = append(parts, "product_code="+v)
	}
	if len(filter.StoreIDs) > 0 {
		parts = append(parts, "store_ids="+joinInt64s(filter.StoreIDs))
	}
	if filter.DateFrom != "" {
		parts = append(parts, "date_from="+filter.DateFrom)
	}
	if filter.DateTo != "" {
		parts = append(parts, "date_to="+filter.DateTo)
	}

	return hashParts(parts)
}
