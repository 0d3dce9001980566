package models

import (
	"time"

	"gorm.io/datatypes"
)

// Attendance statuses.
const (
	AttendanceStatusPresent = "present"
	AttendanceStatusAbsent  = "absent"
	AttendanceStatusHalfDay = "half-day"
	AttendanceStatusLeave   = "leave"
)

// Clock states for a single day.
const (
	ClockStateNotClocked = "not_clocked"
	ClockStateCheckedIn  = "checked_in"
	ClockStateOnBreak    = "on_break"
	ClockStateCheckedOut = "checked_out"
)

// Clock holds the time-tracking fields shared by employee and manager attendance.
type Clock struct {
	CheckInAt      *time.Time `json:"check_in_at"`
	CheckOutAt     *time.Time `json:"check_out_at"`
	BreakStartedAt *time.Time `json:"break_started_at"`
	BreakMinutes   float64    `gorm:"not null;default:0" json:"break_minutes"`
	BreakCount     int        `gorm:"not null;default:0" json:"break_count"`
	State          string     `gorm:"size:16;not null" json:"state"`
	TotalHours     float64    `gorm:"not null;default:0" json:"total_hours"`
}

// Attendance is the daily time-tracking record of an employee.
type Attendance struct {
	Record
	Clock
	TenantID   string                     `gorm:"size:36;index;not null;uniqueIndex:idx_attendance_employee_date,priority:1" json:"tenant_id"`
	EmployeeID string                     `gorm:"size:36;not null;uniqueIndex:idx_attendance_employee_date,priority:2" json:"employee_id"`
	Date       string                     `gorm:"size:10;not null;index;uniqueIndex:idx_attendance_employee_date,priority:3" json:"date"`
	Status     string                     `gorm:"size:16;not null;index" json:"status"`
	Location   string                     `gorm:"size:255" json:"location"`
	Notes      string                     `gorm:"type:text" json:"notes"`
	Photos     datatypes.JSONSlice[string] `gorm:"type:json" json:"photos"`
	MarkedBy   *string                    `gorm:"size:36" json:"marked_by"`
}

// ManagerAttendance is the daily time-tracking record of a site manager.
type ManagerAttendance struct {
	Record
	Clock
	TenantID  string                     `gorm:"size:36;index;not null;uniqueIndex:idx_manager_attendance_manager_date,priority:1" json:"tenant_id"`
	ManagerID string                     `gorm:"size:36;not null;uniqueIndex:idx_manager_attendance_manager_date,priority:2" json:"manager_id"`
	Date      string                     `gorm:"size:10;not null;index;uniqueIndex:idx_manager_attendance_manager_date,priority:3" json:"date"`
	Status    string                     `gorm:"size:16;not null" json:"status"`
	Site      string                     `gorm:"size:255" json:"site"`
	Remarks   string                     `gorm:"type:text" json:"remarks"`
	Photos    datatypes.JSONSlice[string] `gorm:"type:json" json:"photos"`
}
