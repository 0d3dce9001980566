package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// UserFilter narrows user listings. Roles restricts results to the given roles.
type UserFilter struct {
	Page
	TenantID     string
	Roles        []string
	Status       string
	Search       string
	SupervisorID string
	ManagerID    string
}

// UserRepository persists tenant staff accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	Save(ctx context.Context, user *models.User) error
	Count(ctx context.Context, filter UserFilter) (int64, error)
	IDs(ctx context.Context, filter UserFilter) ([]string, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a repository backed by GORM.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) filtered(ctx context.Context, filter UserFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if filter.TenantID != "" {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if len(filter.Roles) > 0 {
		query = query.Where("role IN ?", filter.Roles)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SupervisorID != "" {
		query = query.Where("supervisor_id = ?", filter.SupervisorID)
	}
	if filter.ManagerID != "" {
		query = query.Where("manager_id = ? OR supervisor_id IN (?)", filter.ManagerID,
			r.db.Model(&models.User{}).Select("id").Where("manager_id = ?", filter.ManagerID))
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	return query
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	var users []models.User
	total, err := countAndFind(r.filtered(ctx, filter), filter.Page, "name ASC", &users)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) Count(ctx context.Context, filter UserFilter) (int64, error) {
	var total int64
	err := r.filtered(ctx, filter).Count(&total).Error
	return total, err
}

func (r *userRepository) IDs(ctx context.Context, filter UserFilter) ([]string, error) {
	var ids []string
	if err := r.filtered(ctx, filter).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
