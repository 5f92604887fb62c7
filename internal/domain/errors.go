package domain

import "errors"

// Engine errors. Messages are shown to users as-is.
var (
	// ErrMissingProductSelection is returned when no product can be resolved for a forecast
	ErrMissingProductSelection = errors.New("please select a product before running a forecast")

	// ErrNoStoresResolved is returned when the store filters match no stores
	ErrNoStoresResolved = errors.New("no stores match the selected filters")

	// ErrInvalidPromotionInput is returned when promotion pricing inputs are inconsistent
	ErrInvalidPromotionInput = errors.New("an active promotion needs exactly one of discount, target margin or target price, and no promotion allows none")

	// ErrNoForecastData is returned when no store produced forecast rows
	ErrNoForecastData = errors.New("no forecast data is available for the selected stores and dates")

	// ErrDetailSeriesUnavailable is returned when a campaign's daily series cannot be loaded
	ErrDetailSeriesUnavailable = errors.New("daily campaign data is unavailable, showing estimated figures")

	// ErrCampaignNotFound is returned when a campaign key matches no history or calendar row
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrInvalidRequest is returned when request fields fail validation
	ErrInvalidRequest = errors.New("invalid request")
)
