package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// RosterScope restricts which rosters a caller can see. Empty fields do not
// constrain the query.
type RosterScope struct {
	TenantID   string
	OwnerTypes []string
	CreatedBy  string
	EmployeeID string
}

// RosterFilter narrows roster listings within a scope.
type RosterFilter struct {
	Page
	RosterScope
	Site      string
	WeekStart string
	Status    string
	Employee  string
}

// RosterRepository persists weekly shift rosters.
type RosterRepository interface {
	Create(ctx context.Context, roster *models.Roster) error
	Get(ctx context.Context, scope RosterScope, id string) (models.Roster, error)
	ExistsForEmployee(ctx context.Context, tenantID, employeeID, ownerType, excludeID string) (bool, error)
	List(ctx context.Context, filter RosterFilter) ([]models.Roster, int64, error)
	Save(ctx context.Context, roster *models.Roster) error
	Delete(ctx context.Context, tenantID, id string) error
}

type rosterRepository struct {
	db *gorm.DB
}

// NewRosterRepository constructs a repository backed by GORM.
func NewRosterRepository(db *gorm.DB) RosterRepository {
	return &rosterRepository{db: db}
}

func (s RosterScope) apply(query *gorm.DB) *gorm.DB {
	query = query.Where("tenant_id = ?", s.TenantID)
	if len(s.OwnerTypes) > 0 {
		query = query.Where("owner_type IN ?", s.OwnerTypes)
	}
	if s.CreatedBy != "" {
		query = query.Where("created_by = ?", s.CreatedBy)
	}
	if s.EmployeeID != "" {
		query = query.Where("employee_id = ?", s.EmployeeID)
	}
	return query
}

func (r *rosterRepository) Create(ctx context.Context, roster *models.Roster) error {
	return r.db.WithContext(ctx).Create(roster).Error
}

func (r *rosterRepository) Get(ctx context.Context, scope RosterScope, id string) (models.Roster, error) {
	var roster models.Roster
	if err := scope.apply(r.db.WithContext(ctx)).Where("id = ?", id).First(&roster).Error; err != nil {
		return models.Roster{}, err
	}
	return roster, nil
}

func (r *rosterRepository) ExistsForEmployee(ctx context.Context, tenantID, employeeID, ownerType, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Roster{}).
		Where("tenant_id = ? AND employee_id = ? AND owner_type = ?", tenantID, employeeID, ownerType)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

func (r *rosterRepository) List(ctx context.Context, filter RosterFilter) ([]models.Roster, int64, error) {
	query := filter.RosterScope.apply(r.db.WithContext(ctx).Model(&models.Roster{}))
	if filter.Site != "" {
		query = query.Where("site = ?", filter.Site)
	}
	if filter.WeekStart != "" {
		query = query.Where("week_start = ?", filter.WeekStart)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Employee != "" {
		query = query.Where("employee_id = ?", filter.Employee)
	}

	var rosters []models.Roster
	total, err := countAndFind(query, filter.Page, "week_start DESC, employee_name ASC", &rosters)
	if err != nil {
		return nil, 0, err
	}
	return rosters, total, nil
}

func (r *rosterRepository) Save(ctx context.Context, roster *models.Roster) error {
	return r.db.WithContext(ctx).Save(roster).Error
}

func (r *rosterRepository) Delete(ctx context.Context, tenantID, id string) error {
	return deleteScoped(r.db.WithContext(ctx), &models.Roster{}, tenantID, id)
}
