package models

import (
	"time"

	"gorm.io/datatypes"
)

// Invoice statuses.
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

// Expense statuses.
const (
	ExpenseStatusPending  = "pending"
	ExpenseStatusApproved = "approved"
	ExpenseStatusRejected = "rejected"
)

// InvoiceItem is one billed line.
type InvoiceItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// Invoice bills a client for services rendered.
type Invoice struct {
	Record
	TenantID  string                          `gorm:"size:36;not null;uniqueIndex:idx_invoice_tenant_number" json:"tenant_id"`
	Number    string                          `gorm:"size:32;not null;uniqueIndex:idx_invoice_tenant_number" json:"number"`
	ClientID  string                          `gorm:"size:36;index;not null" json:"client_id"`
	IssueDate string                          `gorm:"size:10;not null" json:"issue_date"`
	DueDate   string                          `gorm:"size:10;not null" json:"due_date"`
	Items     datatypes.JSONSlice[InvoiceItem] `gorm:"type:json" json:"items"`
	Subtotal  float64                         `gorm:"not null" json:"subtotal"`
	TaxRate   float64                         `gorm:"not null;default:0" json:"tax_rate"`
	TaxAmount float64                         `gorm:"not null;default:0" json:"tax_amount"`
	Total     float64                         `gorm:"not null" json:"total"`
	Status    string                          `gorm:"size:16;not null;index" json:"status"`
	PaidAt    *time.Time                      `json:"paid_at"`
	Notes     string                          `gorm:"type:text" json:"notes"`
}

// Expense is a cost incurred by the tenant.
type Expense struct {
	Record
	TenantID    string  `gorm:"size:36;index;not null" json:"tenant_id"`
	Category    string  `gorm:"size:32;not null;index" json:"category"`
	Amount      float64 `gorm:"not null" json:"amount"`
	Description string  `gorm:"type:text" json:"description"`
	Vendor      string  `gorm:"size:255" json:"vendor"`
	IncurredOn  string  `gorm:"size:10;not null" json:"incurred_on"`
	Status      string  `gorm:"size:16;not null;index" json:"status"`
	SubmittedBy string  `gorm:"size:36" json:"submitted_by"`
	ReviewedBy  *string `gorm:"size:36" json:"reviewed_by"`
	ReceiptURL  string  `gorm:"size:512" json:"receipt_url"`
}
