package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// TenantFilter narrows tenant listings.
type TenantFilter struct {
	Page
	Search string
	Status string
}

// TenantRepository persists tenants.
type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id string) (models.Tenant, error)
	List(ctx context.Context, filter TenantFilter) ([]models.Tenant, int64, error)
	Save(ctx context.Context, tenant *models.Tenant) error
	Count(ctx context.Context) (int64, error)
}

type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository constructs a repository backed by GORM.
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

func (r *tenantRepository) GetByID(ctx context.Context, id string) (models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		return models.Tenant{}, err
	}
	return tenant, nil
}

func (r *tenantRepository) List(ctx context.Context, filter TenantFilter) ([]models.Tenant, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Tenant{})
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ?", like, like)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var tenants []models.Tenant
	total, err := countAndFind(query, filter.Page, "name ASC", &tenants)
	if err != nil {
		return nil, 0, err
	}
	return tenants, total, nil
}

func (r *tenantRepository) Save(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).Save(tenant).Error
}

func (r *tenantRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Tenant{}).Count(&total).Error
	return total, err
}
