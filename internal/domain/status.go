package domain

import "strings"

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusPending   CampaignStatus = "pending"
	CampaignStatusApproved  CampaignStatus = "approved"
	CampaignStatusCompleted CampaignStatus = "completed"
)

var campaignStatusPriority = map[CampaignStatus]int{
	CampaignStatusPending:   0,
	CampaignStatusDraft:     1,
	CampaignStatusApproved:  2,
	CampaignStatusCompleted: 3,
}

var campaignStatusLabels = map[CampaignStatus]string{
	CampaignStatusDraft:     "Draft",
	CampaignStatusPending:   "Pending Approval",
	CampaignStatusApproved:  "Approved",
	CampaignStatusCompleted: "Completed",
}

// TrackingPriority orders statuses so action-needed campaigns come first.
// Unknown statuses sort last.
func (s CampaignStatus) TrackingPriority() int {
	if p, ok := campaignStatusPriority[s]; ok {
		return p
	}
	return len(campaignStatusPriority)
}

// Label returns a human-readable label for a campaign status.
func (s CampaignStatus) Label() string {
	if label, ok := campaignStatusLabels[s]; ok {
		return label
	}

	return "Draft"
}

// ParseCampaignStatus returns the status for a given label (case-insensitive).
func ParseCampaignStatus(label string) (CampaignStatus, bool) {
	status := CampaignStatus(strings.ToLower(strings.TrimSpace(label)))
	_, ok := campaignStatusPriority[status]

	return status, ok
}

// StockState is the realized stock outcome of a historical campaign.
type StockState string

const (
	StockStateOK   StockState = "OK"
	StockStateOOS  StockState = "OOS"
	StockStateOver StockState = "Over"
)

// ParseStockState maps backend stock labels onto StockState, defaulting to OK.
func ParseStockState(raw string) StockState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "oos", "out_of_stock", "stockout":
		return StockStateOOS
	case "over", "overstock":
		return StockStateOver
	default:
		return StockStateOK
	}
}
