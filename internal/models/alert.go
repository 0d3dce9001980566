package models

import (
	"time"

	"gorm.io/datatypes"
)

// Alert severities, categories and statuses.
const (
	AlertSeverityInfo     = "info"
	AlertSeverityWarning  = "warning"
	AlertSeverityCritical = "critical"

	AlertStatusOpen         = "open"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusResolved     = "resolved"
)

// Alert is an operational notice raised inside a tenant.
type Alert struct {
	Record
	TenantID       string            `gorm:"size:36;index;not null" json:"tenant_id"`
	Title          string            `gorm:"size:255;not null" json:"title"`
	Message        string            `gorm:"type:text;not null" json:"message"`
	Severity       string            `gorm:"size:16;not null;index" json:"severity"`
	Category       string            `gorm:"size:32;not null;index" json:"category"`
	Audience       string            `gorm:"size:32;not null" json:"audience"`
	Status         string            `gorm:"size:16;not null;index" json:"status"`
	CreatedBy      string            `gorm:"size:36" json:"created_by"`
	AcknowledgedBy *string           `gorm:"size:36" json:"acknowledged_by"`
	AcknowledgedAt *time.Time        `json:"acknowledged_at"`
	ResolvedAt     *time.Time        `json:"resolved_at"`
	Metadata       datatypes.JSONMap `gorm:"type:json" json:"metadata"`
}
