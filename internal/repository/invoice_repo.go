package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	Page
	TenantID string
	ClientID string
	Status   string
	From     string
	To       string
}

// AmountByStatus aggregates monetary rows by status.
type AmountByStatus struct {
	Status string
	Count  int64
	Amount float64
}

// InvoiceRepository persists client invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, tenantID, id string) (models.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]models.Invoice, int64, error)
	Save(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, tenantID, id string) error
	LastNumber(ctx context.Context, tenantID, prefix string) (string, error)
	Summary(ctx context.Context, tenantID string) ([]AmountByStatus, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository constructs a repository backed by GORM.
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *invoiceRepository) GetByID(ctx context.Context, tenantID, id string) (models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&invoice).Error; err != nil {
		return models.Invoice{}, err
	}
	return invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceFilter) ([]models.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Invoice{}).Where("tenant_id = ?", filter.TenantID)
	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != "" {
		query = query.Where("issue_date >= ?", filter.From)
	}
	if filter.To != "" {
		query = query.Where("issue_date <= ?", filter.To)
	}

	var invoices []models.Invoice
	total, err := countAndFind(query, filter.Page, "issue_date DESC, number DESC", &invoices)
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *invoiceRepository) Save(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

func (r *invoiceRepository) Delete(ctx context.Context, tenantID, id string) error {
	return deleteScoped(r.db.WithContext(ctx), &models.Invoice{}, tenantID, id)
}

// LastNumber returns the highest invoice number with the prefix, or "" when none exists.
func (r *invoiceRepository) LastNumber(ctx context.Context, tenantID, prefix string) (string, error) {
	var last sql.NullString
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Select("MAX(number)").
		Where("tenant_id = ? AND number LIKE ?", tenantID, prefix+"%").
		Row().Scan(&last)
	if err != nil {
		return "", err
	}
	return last.String, nil
}

func (r *invoiceRepository) Summary(ctx context.Context, tenantID string) ([]AmountByStatus, error) {
	var rows []AmountByStatus
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS amount").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
