package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// AttendanceFilter narrows attendance listings. Dates use models.DateLayout.
type AttendanceFilter struct {
	Page
	TenantID    string
	EmployeeIDs []string
	EmployeeID  string
	Date        string
	From        string
	To          string
	Status      string
}

// StatusCount is an aggregation row keyed by status.
type StatusCount struct {
	Status string
	Count  int64
	Total  float64
}

// AttendanceRepository persists employee attendance records.
type AttendanceRepository interface {
	Create(ctx context.Context, record *models.Attendance) error
	GetByID(ctx context.Context, tenantID, id string) (models.Attendance, error)
	GetByEmployeeDate(ctx context.Context, tenantID, employeeID, date string) (models.Attendance, error)
	Save(ctx context.Context, record *models.Attendance) error
	List(ctx context.Context, filter AttendanceFilter) ([]models.Attendance, int64, error)
	Summary(ctx context.Context, filter AttendanceFilter) ([]StatusCount, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository constructs a repository backed by GORM.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Create(ctx context.Context, record *models.Attendance) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *attendanceRepository) GetByID(ctx context.Context, tenantID, id string) (models.Attendance, error) {
	var record models.Attendance
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&record).Error; err != nil {
		return models.Attendance{}, err
	}
	return record, nil
}

func (r *attendanceRepository) GetByEmployeeDate(ctx context.Context, tenantID, employeeID, date string) (models.Attendance, error) {
	var record models.Attendance
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND employee_id = ? AND date = ?", tenantID, employeeID, date).
		First(&record).Error
	if err != nil {
		return models.Attendance{}, err
	}
	return record, nil
}

func (r *attendanceRepository) Save(ctx context.Context, record *models.Attendance) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *attendanceRepository) filtered(ctx context.Context, filter AttendanceFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Attendance{}).Where("tenant_id = ?", filter.TenantID)
	if filter.EmployeeID != "" {
		query = query.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.EmployeeIDs != nil {
		query = query.Where("employee_id IN ?", filter.EmployeeIDs)
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
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	return query
}

func (r *attendanceRepository) List(ctx context.Context, filter AttendanceFilter) ([]models.Attendance, int64, error) {
	var records []models.Attendance
	total, err := countAndFind(r.filtered(ctx, filter), filter.Page, "date DESC, created_at DESC", &records)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *attendanceRepository) Summary(ctx context.Context, filter AttendanceFilter) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.filtered(ctx, filter).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_hours), 0) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
