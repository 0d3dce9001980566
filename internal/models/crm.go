package models

import "time"

// Client statuses.
const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
)

// Lead pipeline statuses.
const (
	LeadStatusNew         = "new"
	LeadStatusContacted   = "contacted"
	LeadStatusQualified   = "qualified"
	LeadStatusProposal    = "proposal"
	LeadStatusNegotiation = "negotiation"
	LeadStatusClosedWon   = "closed-won"
	LeadStatusClosedLost  = "closed-lost"
)

// LeadStatuses lists the pipeline in order.
var LeadStatuses = []string{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusProposal,
	LeadStatusNegotiation,
	LeadStatusClosedWon,
	LeadStatusClosedLost,
}

// IsClosed reports whether the lead reached a terminal status.
func (l Lead) IsClosed() bool {
	return l.Status == LeadStatusClosedWon || l.Status == LeadStatusClosedLost
}

// Client is a customer site or organisation served by the tenant.
type Client struct {
	Record
	TenantID string `gorm:"size:36;index;not null" json:"tenant_id"`
	Name     string `gorm:"size:255;not null" json:"name"`
	Email    string `gorm:"size:255" json:"email"`
	Phone    string `gorm:"size:64" json:"phone"`
	Company  string `gorm:"size:255" json:"company"`
	Address  string `gorm:"type:text" json:"address"`
	Industry string `gorm:"size:128" json:"industry"`
	Status   string `gorm:"size:16;not null;index" json:"status"`
	Notes    string `gorm:"type:text" json:"notes"`
}

// Lead is a prospective client moving through the sales pipeline.
type Lead struct {
	Record
	TenantID       string  `gorm:"size:36;index;not null" json:"tenant_id"`
	Name           string  `gorm:"size:255;not null" json:"name"`
	Email          string  `gorm:"size:255" json:"email"`
	Phone          string  `gorm:"size:64" json:"phone"`
	Company        string  `gorm:"size:255" json:"company"`
	Source         string  `gorm:"size:64" json:"source"`
	Status         string  `gorm:"size:16;not null;index" json:"status"`
	EstimatedValue float64 `gorm:"not null;default:0" json:"estimated_value"`
	AssignedTo     *string `gorm:"size:36;index" json:"assigned_to"`
	ClientID       *string `gorm:"size:36" json:"client_id"`
	Notes          string  `gorm:"type:text" json:"notes"`
}

// Communication is a logged interaction with a client or a lead.
type Communication struct {
	Record
	TenantID   string    `gorm:"size:36;index;not null" json:"tenant_id"`
	ClientID   *string   `gorm:"size:36;index" json:"client_id"`
	LeadID     *string   `gorm:"size:36;index" json:"lead_id"`
	Channel    string    `gorm:"size:16;not null" json:"channel"`
	Direction  string    `gorm:"size:16;not null" json:"direction"`
	Subject    string    `gorm:"size:255" json:"subject"`
	Body       string    `gorm:"type:text" json:"body"`
	OccurredAt time.Time `gorm:"index" json:"occurred_at"`
	CreatedBy  string    `gorm:"size:36" json:"created_by"`
}
