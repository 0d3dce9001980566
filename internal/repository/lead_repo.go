package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// LeadFilter narrows lead listings.
type LeadFilter struct {
	Page
	TenantID   string
	Status     string
	Source     string
	AssignedTo string
	Search     string
}

// PipelineRow aggregates leads sharing a status.
type PipelineRow struct {
	Status string
	Count  int64
	Value  float64
}

// LeadRepository persists CRM leads.
type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	GetByID(ctx context.Context, tenantID, id string) (models.Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]models.Lead, int64, error)
	Save(ctx context.Context, lead *models.Lead) error
	Delete(ctx context.Context, tenantID, id string) error
	Pipeline(ctx context.Context, tenantID string) ([]PipelineRow, error)
	CountOpen(ctx context.Context, tenantID string) (int64, error)
	Convert(ctx context.Context, lead *models.Lead, client *models.Client) error
}

type leadRepository struct {
	db *gorm.DB
}

// NewLeadRepository constructs a repository backed by GORM.
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

func (r *leadRepository) Create(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *leadRepository) GetByID(ctx context.Context, tenantID, id string) (models.Lead, error) {
	var lead models.Lead
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&lead).Error; err != nil {
		return models.Lead{}, err
	}
	return lead, nil
}

func (r *leadRepository) List(ctx context.Context, filter LeadFilter) ([]models.Lead, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Lead{}).Where("tenant_id = ?", filter.TenantID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.AssignedTo != "" {
		query = query.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(company) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	var leads []models.Lead
	total, err := countAndFind(query, filter.Page, "created_at DESC", &leads)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func (r *leadRepository) Save(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Save(lead).Error
}

func (r *leadRepository) Delete(ctx context.Context, tenantID, id string) error {
	return deleteScoped(r.db.WithContext(ctx), &models.Lead{}, tenantID, id)
}

func (r *leadRepository) Pipeline(ctx context.Context, tenantID string) ([]PipelineRow, error) {
	var rows []PipelineRow
	err := r.db.WithContext(ctx).Model(&models.Lead{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(estimated_value), 0) AS value").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *leadRepository) CountOpen(ctx context.Context, tenantID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Lead{}).
		Where("tenant_id = ? AND status NOT IN ?", tenantID, []string{models.LeadStatusClosedWon, models.LeadStatusClosedLost}).
		Count(&total).Error
	return total, err
}

// Convert creates the client and links the closed-won lead to it atomically.
func (r *leadRepository) Convert(ctx context.Context, lead *models.Lead, client *models.Client) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(client).Error; err != nil {
			return err
		}
		lead.ClientID = &client.ID
		lead.Status = models.LeadStatusClosedWon
		return tx.Save(lead).Error
	})
}
