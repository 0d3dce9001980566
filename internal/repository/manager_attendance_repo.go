package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// ManagerAttendanceFilter narrows manager attendance listings.
type ManagerAttendanceFilter struct {
	Page
	TenantID  string
	ManagerID string
	Date      string
	From      string
	To        string
}

// ManagerAttendanceRepository persists manager site attendance.
type ManagerAttendanceRepository interface {
	Create(ctx context.Context, record *models.ManagerAttendance) error
	GetByManagerDate(ctx context.Context, tenantID, managerID, date string) (models.ManagerAttendance, error)
	Save(ctx context.Context, record *models.ManagerAttendance) error
	List(ctx context.Context, filter ManagerAttendanceFilter) ([]models.ManagerAttendance, int64, error)
}

type managerAttendanceRepository struct {
	db *gorm.DB
}

// NewManagerAttendanceRepository constructs a repository backed by GORM.
func NewManagerAttendanceRepository(db *gorm.DB) ManagerAttendanceRepository {
	return &managerAttendanceRepository{db: db}
}

func (r *managerAttendanceRepository) Create(ctx context.Context, record *models.ManagerAttendance) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *managerAttendanceRepository) GetByManagerDate(ctx context.Context, tenantID, managerID, date string) (models.ManagerAttendance, error) {
	var record models.ManagerAttendance
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND manager_id = ? AND date = ?", tenantID, managerID, date).
		First(&record).Error
	if err != nil {
		return models.ManagerAttendance{}, err
	}
	return record, nil
}

func (r *managerAttendanceRepository) Save(ctx context.Context, record *models.ManagerAttendance) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *managerAttendanceRepository) List(ctx context.Context, filter ManagerAttendanceFilter) ([]models.ManagerAttendance, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ManagerAttendance{}).Where("tenant_id = ?", filter.TenantID)
	if filter.ManagerID != "" {
		query = query.Where("manager_id = ?", filter.ManagerID)
	}
	if filter.Date != "" {
		query = query.Where("date = ?", filter.Date)
	}
	if filter.From != "" {
		query = query.Where("date >= ?", filter.From)
	}
	if filter.To != "" {
		query = query.Where("date <= ?", filter.To)
	}

	var records []models.ManagerAttendance
	total, err := countAndFind(query, filter.Page, "date DESC", &records)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
