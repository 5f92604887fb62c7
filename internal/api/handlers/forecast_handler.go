package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
)

// Forecaster runs one forecast request end to end.
type Forecaster interface {
	Forecast(ctx context.Context, req domain.ForecastRequest) (*domain.ForecastResult, error)
}

type ForecastHandler struct {
	service Forecaster
}

func NewForecastHandler(service Forecaster) *ForecastHandler {
	return &ForecastHandler{service: service}
}

// Predict handles POST /forecast/predict.
func (h *ForecastHandler) Predict(c *gin.Context) {
	var req domain.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, err.Error()))
		return
	}

	result, err := h.service.Forecast(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
