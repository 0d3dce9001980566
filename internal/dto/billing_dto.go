package dto

import (
	"time"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// InvoiceItemPayload is one submitted invoice line.
type InvoiceItemPayload struct {
	Description string  `json:"description" validate:"required,max=500"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

// InvoiceCreateRequest captures a new invoice. Totals are computed server-side.
type InvoiceCreateRequest struct {
	ClientID  string               `json:"client_id" validate:"required,max=36"`
	IssueDate string               `json:"issue_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate   string               `json:"due_date" validate:"required,datetime=2006-01-02"`
	Items     []InvoiceItemPayload `json:"items" validate:"required,min=1,dive"`
	TaxRate   float64              `json:"tax_rate" validate:"gte=0,lte=100"`
	Notes     string               `json:"notes" validate:"omitempty,max=5000"`
}

// InvoiceUpdateRequest captures partial updates of a draft invoice.
type InvoiceUpdateRequest struct {
	ClientID  *string              `json:"client_id" validate:"omitempty,min=1,max=36"`
	IssueDate *string              `json:"issue_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate   *string              `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Items     []InvoiceItemPayload `json:"items" validate:"omitempty,min=1,dive"`
	TaxRate   *float64             `json:"tax_rate" validate:"omitempty,gte=0,lte=100"`
	Notes     *string              `json:"notes" validate:"omitempty,max=5000"`
}

// InvoiceStatusRequest moves an invoice through its lifecycle.
type InvoiceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft sent paid overdue cancelled"`
}

// InvoiceListRequest defines filters for invoice listings.
type InvoiceListRequest struct {
	ListRequest
	ClientID string
	Status   string
	From     string `validate:"omitempty,datetime=2006-01-02"`
	To       string `validate:"omitempty,datetime=2006-01-02"`
}

// InvoiceResponse serializes an invoice.
type InvoiceResponse struct {
	ID        string               `json:"id"`
	TenantID  string               `json:"tenant_id"`
	Number    string               `json:"number"`
	ClientID  string               `json:"client_id"`
	IssueDate string               `json:"issue_date"`
	DueDate   string               `json:"due_date"`
	Items     []models.InvoiceItem `json:"items"`
	Subtotal  float64              `json:"subtotal"`
	TaxRate   float64              `json:"tax_rate"`
	TaxAmount float64              `json:"tax_amount"`
	Total     float64              `json:"total"`
	Status    string               `json:"status"`
	PaidAt    *time.Time           `json:"paid_at"`
	Notes     string               `json:"notes"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// NewInvoiceResponse converts an invoice model into a DTO.
func NewInvoiceResponse(invoice models.Invoice) InvoiceResponse {
	items := []models.InvoiceItem(invoice.Items)
	if items == nil {
		items = []models.InvoiceItem{}
	}
	return InvoiceResponse{
		ID:        invoice.ID,
		TenantID:  invoice.TenantID,
		Number:    invoice.Number,
		ClientID:  invoice.ClientID,
		IssueDate: invoice.IssueDate,
		DueDate:   invoice.DueDate,
		Items:     items,
		Subtotal:  invoice.Subtotal,
		TaxRate:   invoice.TaxRate,
		TaxAmount: invoice.TaxAmount,
		Total:     invoice.Total,
		Status:    invoice.Status,
		PaidAt:    invoice.PaidAt,
		Notes:     invoice.Notes,
		CreatedAt: invoice.CreatedAt,
		UpdatedAt: invoice.UpdatedAt,
	}
}

// ExpenseCreateRequest captures a new expense.
type ExpenseCreateRequest struct {
	Category    string  `json:"category" validate:"required,oneof=supplies maintenance utilities payroll travel other"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Description string  `json:"description" validate:"omitempty,max=2000"`
	Vendor      string  `json:"vendor" validate:"omitempty,max=255"`
	IncurredOn  string  `json:"incurred_on" validate:"omitempty,datetime=2006-01-02"`
	ReceiptURL  string  `json:"receipt_url" validate:"omitempty,url"`
}

// ExpenseUpdateRequest captures partial updates of a pending expense.
type ExpenseUpdateRequest struct {
	Category    *string  `json:"category" validate:"omitempty,oneof=supplies maintenance utilities payroll travel other"`
	Amount      *float64 `json:"amount" validate:"omitempty,gt=0"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Vendor      *string  `json:"vendor" validate:"omitempty,max=255"`
	IncurredOn  *string  `json:"incurred_on" validate:"omitempty,datetime=2006-01-02"`
	ReceiptURL  *string  `json:"receipt_url" validate:"omitempty,url"`
}

// ExpenseListRequest defines filters for expense listings.
type ExpenseListRequest struct {
	ListRequest
	Category string
	Status   string
	From     string `validate:"omitempty,datetime=2006-01-02"`
	To       string `validate:"omitempty,datetime=2006-01-02"`
}

// ExpenseResponse serializes an expense.
type ExpenseResponse struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Vendor      string    `json:"vendor"`
	IncurredOn  string    `json:"incurred_on"`
	Status      string    `json:"status"`
	SubmittedBy string    `json:"submitted_by"`
	ReviewedBy  *string   `json:"reviewed_by"`
	ReceiptURL  string    `json:"receipt_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewExpenseResponse converts an expense model into a DTO.
func NewExpenseResponse(expense models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          expense.ID,
		TenantID:    expense.TenantID,
		Category:    expense.Category,
		Amount:      expense.Amount,
		Description: expense.Description,
		Vendor:      expense.Vendor,
		IncurredOn:  expense.IncurredOn,
		Status:      expense.Status,
		SubmittedBy: expense.SubmittedBy,
		ReviewedBy:  expense.ReviewedBy,
		ReceiptURL:  expense.ReceiptURL,
		CreatedAt:   expense.CreatedAt,
	}
}

// StatusTotal aggregates money at one status.
type StatusTotal struct {
	Status string  `json:"status"`
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

// BillingSummaryResponse lists totals per status.
type BillingSummaryResponse struct {
	ByStatus []StatusTotal `json:"by_status"`
	Total    float64       `json:"total"`
}
