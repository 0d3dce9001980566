package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// ExpenseFilter narrows expense listings.
type ExpenseFilter struct {
	Page
	TenantID    string
	Category    string
	Status      string
	SubmittedBy string
	From        string
	To          string
}

// ExpenseRepository persists tenant expenses.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, tenantID, id string) (models.Expense, error)
	List(ctx context.Context, filter ExpenseFilter) ([]models.Expense, int64, error)
	Save(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, tenantID, id string) error
	Summary(ctx context.Context, tenantID string) ([]AmountByStatus, error)
}

type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository constructs a repository backed by GORM.
func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *expenseRepository) GetByID(ctx context.Context, tenantID, id string) (models.Expense, error) {
	var expense models.Expense
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&expense).Error; err != nil {
		return models.Expense{}, err
	}
	return expense, nil
}

func (r *expenseRepository) List(ctx context.Context, filter ExpenseFilter) ([]models.Expense, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Expense{}).Where("tenant_id = ?", filter.TenantID)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SubmittedBy != "" {
		query = query.Where("submitted_by = ?", filter.SubmittedBy)
	}
	if filter.From != "" {
		query = query.Where("incurred_on >= ?", filter.From)
	}
	if filter.To != "" {
		query = query.Where("incurred_on <= ?", filter.To)
	}

	var expenses []models.Expense
	total, err := countAndFind(query, filter.Page, "incurred_on DESC", &expenses)
	if err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

func (r *expenseRepository) Save(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

func (r *expenseRepository) Delete(ctx context.Context, tenantID, id string) error {
	return deleteScoped(r.db.WithContext(ctx), &models.Expense{}, tenantID, id)
}

func (r *expenseRepository) Summary(ctx context.Context, tenantID string) ([]AmountByStatus, error) {
	var rows []AmountByStatus
	err := r.db.WithContext(ctx).Model(&models.Expense{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
