package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// CommunicationFilter narrows the interaction log.
type CommunicationFilter struct {
	Page
	TenantID string
	ClientID string
	LeadID   string
	Channel  string
}

// CommunicationRepository persists client and lead interactions.
type CommunicationRepository interface {
	Create(ctx context.Context, entry *models.Communication) error
	List(ctx context.Context, filter CommunicationFilter) ([]models.Communication, int64, error)
}

type communicationRepository struct {
	db *gorm.DB
}

// NewCommunicationRepository constructs a repository backed by GORM.
func NewCommunicationRepository(db *gorm.DB) CommunicationRepository {
	return &communicationRepository{db: db}
}

func (r *communicationRepository) Create(ctx context.Context, entry *models.Communication) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *communicationRepository) List(ctx context.Context, filter CommunicationFilter) ([]models.Communication, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Communication{}).Where("tenant_id = ?", filter.TenantID)
	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.LeadID != "" {
		query = query.Where("lead_id = ?", filter.LeadID)
	}
	if filter.Channel != "" {
		query = query.Where("channel = ?", filter.Channel)
	}

	var entries []models.Communication
	total, err := countAndFind(query, filter.Page, "occurred_at DESC", &entries)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
