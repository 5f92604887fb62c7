package repository

import (
	"context"

	"github.com/andresuchdata/promolift/backend-go/internal/domain"
)

// DetailSeriesQuery identifies the daily series of one campaign.
type DetailSeriesQuery struct {
	CampaignKey      string
	StoreCode        *int64
	ProductCode      *int64
	StartDate        string
	EndDate          string
	WindowDaysBefore int
	WindowDaysAfter  int
}

// PromotionRepository supplies promotion history, the planning calendar and campaign daily series.
type PromotionRepository interface {
	History(ctx context.Context, filter domain.CampaignFilter) ([]domain.RawCampaignRow, error)
	Calendar(ctx context.Context, filter domain.CampaignFilter) ([]domain.RawCampaignRow, error)
	FindHistory(ctx context.Context, key string) (domain.RawCampaignRow, bool, error)
	FindCalendar(ctx context.Context, key string) (domain.RawCampaignRow, bool, error)
	DetailSeries(ctx context.Context, query DetailSeriesQuery) (*domain.CampaignDetailSeries, error)
}
