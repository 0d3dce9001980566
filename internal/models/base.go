package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the layout used for calendar-day columns.
const DateLayout = "2006-01-02"

// Record carries the generated identifier and timestamps shared by every module.
type Record struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// All lists every persisted model for schema migration.
func All() []interface{} {
	return []interface{}{
		&Tenant{},
		&User{},
		&Alert{},
		&Attendance{},
		&ManagerAttendance{},
		&Roster{},
		&LeaveRequest{},
		&Client{},
		&Lead{},
		&Communication{},
		&Invoice{},
		&Expense{},
		&ActivityLog{},
	}
}
