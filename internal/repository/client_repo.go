package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// ClientFilter narrows client listings.
type ClientFilter struct {
	Page
	TenantID string
	Status   string
	Search   string
}

// ClientRepository persists CRM clients.
type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, tenantID, id string) (models.Client, error)
	List(ctx context.Context, filter ClientFilter) ([]models.Client, int64, error)
	Save(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, tenantID, id string) error
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository constructs a repository backed by GORM.
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepository) GetByID(ctx context.Context, tenantID, id string) (models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&client).Error; err != nil {
		return models.Client{}, err
	}
	return client, nil
}

func (r *clientRepository) List(ctx context.Context, filter ClientFilter) ([]models.Client, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Client{}).Where("tenant_id = ?", filter.TenantID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(company) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	var clients []models.Client
	total, err := countAndFind(query, filter.Page, "name ASC", &clients)
	if err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (r *clientRepository) Save(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, tenantID, id string) error {
	return deleteScoped(r.db.WithContext(ctx), &models.Client{}, tenantID, id)
}
