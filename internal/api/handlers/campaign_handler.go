package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
)

// CampaignReader serves the campaign tracking views.
type CampaignReader interface {
	Tracking(ctx context.Context, filter domain.CampaignFilter) ([]domain.CampaignRecord, error)
	Outcomes(ctx context.Context, filter domain.CampaignFilter) (*domain.CampaignOutcomes, error)
	Detail(ctx context.Context, key string) (*domain.CampaignDetail, error)
}

type CampaignHandler struct {
	service CampaignReader
}

func NewCampaignHandler(service CampaignReader) *CampaignHandler {
	return &CampaignHandler{service: service}
}

func (h *CampaignHandler) parseFilter(c *gin.Context) domain.CampaignFilter {
	filter := domain.CampaignFilter{
		Region:      strings.TrimSpace(c.Query("region")),
		Category:    strings.TrimSpace(c.Query("category")),
		ProductCode: strings.TrimSpace(c.Query("product_code")),
		DateFrom:    strings.TrimSpace(c.Query("date_from")),
		DateTo:      strings.TrimSpace(c.Query("date_to")),
	}

	// Accept both ?store_ids=1,2 and ?store_ids=1&store_ids=2
	for _, raw := range c.QueryArray("store_ids") {
		for _, part := range strings.Split(raw, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil && id > 0 {
				filter.StoreIDs = append(filter.StoreIDs, id)
			}
		}
	}

	return filter
}

func (h *CampaignHandler) GetTracking(c *gin.Context) {
	records, err := h.service.Tracking(c.Request.Context(), h.parseFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records, "total": len(records)})
}

func (h *CampaignHandler) GetOutcomes(c *gin.Context) {
	outcomes, err := h.service.Outcomes(c.Request.Context(), h.parseFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcomes)
}

func (h *CampaignHandler) GetDetail(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "campaign key is required"})
		return
	}

	detail, err := h.service.Detail(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
