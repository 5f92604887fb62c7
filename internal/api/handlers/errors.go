package handlers

import (
	"errors"
	"net/http"

	"github.com/andresuchdata/promolift/backend-go/internal/api/middleware"
	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const internalErrorMessage = "something went wrong, please try again later"

// statusFor maps engine errors to HTTP status codes. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidPromotionInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMissingProductSelection), errors.Is(err, domain.ErrNoStoresResolved):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoForecastData), errors.Is(err, domain.ErrCampaignNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the human message of a known error, or a generic one.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", middleware.GetRequestID(c)).Str("path", c.FullPath()).Msg("request failed")
		message = internalErrorMessage
	}
	c.JSON(status, gin.H{"error": message})
}
