package models

import "time"

// Leave types and statuses.
const (
	LeaveTypeAnnual = "annual"
	LeaveTypeSick   = "sick"
	LeaveTypeUnpaid = "unpaid"
	LeaveTypeOther  = "other"

	LeaveStatusPending   = "pending"
	LeaveStatusApproved  = "approved"
	LeaveStatusRejected  = "rejected"
	LeaveStatusCancelled = "cancelled"
)

// LeaveRequest is an employee's request for time off.
type LeaveRequest struct {
	Record
	TenantID   string     `gorm:"size:36;index;not null" json:"tenant_id"`
	EmployeeID string     `gorm:"size:36;index;not null" json:"employee_id"`
	Type       string     `gorm:"size:16;not null" json:"type"`
	StartDate  string     `gorm:"size:10;not null" json:"start_date"`
	EndDate    string     `gorm:"size:10;not null" json:"end_date"`
	Days       int        `gorm:"not null" json:"days"`
	Reason     string     `gorm:"type:text" json:"reason"`
	Status     string     `gorm:"size:16;not null;index" json:"status"`
	ReviewedBy *string    `gorm:"size:36" json:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at"`
	ReviewNote string     `gorm:"type:text" json:"review_note"`
}
