package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// LeaveFilter narrows leave request listings.
type LeaveFilter struct {
	Page
	TenantID    string
	EmployeeID  string
	EmployeeIDs []string
	Status      string
	Type        string
}

// LeaveRepository persists leave requests.
type LeaveRepository interface {
	Create(ctx context.Context, leave *models.LeaveRequest) error
	GetByID(ctx context.Context, tenantID, id string) (models.LeaveRequest, error)
	List(ctx context.Context, filter LeaveFilter) ([]models.LeaveRequest, int64, error)
	Save(ctx context.Context, leave *models.LeaveRequest) error
	Count(ctx context.Context, filter LeaveFilter) (int64, error)
}

type leaveRepository struct {
	db *gorm.DB
}

// NewLeaveRepository constructs a repository backed by GORM.
func NewLeaveRepository(db *gorm.DB) LeaveRepository {
	return &leaveRepository{db: db}
}

func (r *leaveRepository) Create(ctx context.Context, leave *models.LeaveRequest) error {
	return r.db.WithContext(ctx).Create(leave).Error
}

func (r *leaveRepository) GetByID(ctx context.Context, tenantID, id string) (models.LeaveRequest, error) {
	var leave models.LeaveRequest
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&leave).Error; err != nil {
		return models.LeaveRequest{}, err
	}
	return leave, nil
}

func (r *leaveRepository) filtered(ctx context.Context, filter LeaveFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.LeaveRequest{}).Where("tenant_id = ?", filter.TenantID)
	if filter.EmployeeID != "" {
		query = query.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.EmployeeIDs != nil {
		query = query.Where("employee_id IN ?", filter.EmployeeIDs)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	return query
}

func (r *leaveRepository) List(ctx context.Context, filter LeaveFilter) ([]models.LeaveRequest, int64, error) {
	var leaves []models.LeaveRequest
	total, err := countAndFind(r.filtered(ctx, filter), filter.Page, "start_date DESC", &leaves)
	if err != nil {
		return nil, 0, err
	}
	return leaves, total, nil
}

func (r *leaveRepository) Save(ctx context.Context, leave *models.LeaveRequest) error {
	return r.db.WithContext(ctx).Save(leave).Error
}

func (r *leaveRepository) Count(ctx context.Context, filter LeaveFilter) (int64, error) {
	var total int64
	err := r.filtered(ctx, filter).Count(&total).Error
	return total, err
}
