package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// AlertFilter narrows alert listings. Audiences restricts results to alerts
// addressed to one of the given roles.
type AlertFilter struct {
	Page
	TenantID  string
	Status    string
	Severity  string
	Category  string
	Audiences []string
}

// AlertRepository persists tenant alerts.
type AlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	GetByID(ctx context.Context, tenantID, id string) (models.Alert, error)
	List(ctx context.Context, filter AlertFilter) ([]models.Alert, int64, error)
	Save(ctx context.Context, alert *models.Alert) error
	CountOpen(ctx context.Context, tenantID string, audiences []string) (int64, error)
}

type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository constructs a repository backed by GORM.
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *models.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *alertRepository) GetByID(ctx context.Context, tenantID, id string) (models.Alert, error) {
	var alert models.Alert
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&alert).Error
	if err != nil {
		return models.Alert{}, err
	}
	return alert, nil
}

func (r *alertRepository) List(ctx context.Context, filter AlertFilter) ([]models.Alert, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Alert{}).Where("tenant_id = ?", filter.TenantID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if len(filter.Audiences) > 0 {
		query = query.Where("audience IN ?", filter.Audiences)
	}

	var alerts []models.Alert
	total, err := countAndFind(query, filter.Page, "created_at DESC", &alerts)
	if err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

func (r *alertRepository) Save(ctx context.Context, alert *models.Alert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

func (r *alertRepository) CountOpen(ctx context.Context, tenantID string, audiences []string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Alert{}).
		Where("tenant_id = ? AND status <> ?", tenantID, models.AlertStatusResolved)
	if len(audiences) > 0 {
		query = query.Where("audience IN ?", audiences)
	}
	var total int64
	err := query.Count(&total).Error
	return total, err
}
