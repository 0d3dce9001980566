package dto

import (
	"time"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// AlertListRequest defines filters for listing alerts.
type AlertListRequest struct {
	ListRequest
	Status   string
	Severity string
	Category string
}

// AlertCreateRequest captures a new alert.
type AlertCreateRequest struct {
	Title    string                 `json:"title" validate:"required,min=3,max=255"`
	Message  string                 `json:"message" validate:"required,min=1,max=5000"`
	Severity string                 `json:"severity" validate:"required,oneof=info warning critical"`
	Category string                 `json:"category" validate:"omitempty,oneof=general attendance security maintenance billing"`
	Audience string                 `json:"audience" validate:"omitempty,oneof=employee supervisor manager admin superadmin"`
	Metadata map[string]interface{} `json:"metadata" validate:"omitempty"`
}

// AlertResponse serializes an alert.
type AlertResponse struct {
	ID             string                 `json:"id"`
	TenantID       string                 `json:"tenant_id"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message"`
	Severity       string                 `json:"severity"`
	Category       string                 `json:"category"`
	Audience       string                 `json:"audience"`
	Status         string                 `json:"status"`
	CreatedBy      string                 `json:"created_by"`
	AcknowledgedBy *string                `json:"acknowledged_by"`
	AcknowledgedAt *time.Time             `json:"acknowledged_at"`
	ResolvedAt     *time.Time             `json:"resolved_at"`
	Metadata       map[string]interface{} `json:"metadata"`
	CreatedAt      time.Time              `json:"created_at"`
}

// NewAlertResponse converts an alert model into a DTO.
func NewAlertResponse(alert models.Alert) AlertResponse {
	return AlertResponse{
		ID:             alert.ID,
		TenantID:       alert.TenantID,
		Title:          alert.Title,
		Message:        alert.Message,
		Severity:       alert.Severity,
		Category:       alert.Category,
		Audience:       alert.Audience,
		Status:         alert.Status,
		CreatedBy:      alert.CreatedBy,
		AcknowledgedBy: alert.AcknowledgedBy,
		AcknowledgedAt: alert.AcknowledgedAt,
		ResolvedAt:     alert.ResolvedAt,
		Metadata:       metadataFromJSON(alert.Metadata),
		CreatedAt:      alert.CreatedAt,
	}
}
