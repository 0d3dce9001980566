package dto

import (
	"time"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// CheckInRequest captures optional details supplied when clocking in.
type CheckInRequest struct {
	Location string   `json:"location" validate:"omitempty,max=255"`
	Notes    string   `json:"notes" validate:"omitempty,max=2000"`
	Photos   []string `json:"photos" validate:"omitempty,max=3,dive,url"`
}

// CheckOutRequest captures optional details supplied when clocking out.
type CheckOutRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=2000"`
}

// AttendanceMarkRequest records a day's status without clocking.
type AttendanceMarkRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,max=36"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Status     string `json:"status" validate:"required,oneof=present absent half-day leave"`
	Notes      string `json:"notes" validate:"omitempty,max=2000"`
}

// AttendanceStatusRequest overrides the status of a record.
type AttendanceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=present absent half-day leave"`
	Notes  string `json:"notes" validate:"omitempty,max=2000"`
}

// AttendanceListRequest defines filters for attendance listings.
type AttendanceListRequest struct {
	ListRequest
	Date       string `validate:"omitempty,datetime=2006-01-02"`
	From       string `validate:"omitempty,datetime=2006-01-02"`
	To         string `validate:"omitempty,datetime=2006-01-02"`
	EmployeeID string
	Status     string `validate:"omitempty,oneof=present absent half-day leave"`
}

// ClockResponse serializes the time-tracking fields of a day.
type ClockResponse struct {
	State          string     `json:"state"`
	CheckInAt      *time.Time `json:"check_in_at"`
	CheckOutAt     *time.Time `json:"check_out_at"`
	BreakStartedAt *time.Time `json:"break_started_at"`
	BreakMinutes   float64    `json:"break_minutes"`
	BreakCount     int        `json:"break_count"`
	TotalHours     float64    `json:"total_hours"`
}

// AttendanceResponse serializes an employee attendance record.
type AttendanceResponse struct {
	ClockResponse
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	EmployeeID string    `json:"employee_id"`
	Date       string    `json:"date"`
	Status     string    `json:"status"`
	Location   string    `json:"location"`
	Notes      string    `json:"notes"`
	Photos     []string  `json:"photos"`
	MarkedBy   *string   `json:"marked_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AttendanceTodayResponse reports the caller's current clock state.
type AttendanceTodayResponse struct {
	Date   string              `json:"date"`
	State  string              `json:"state"`
	Record *AttendanceResponse `json:"record"`
}

// AttendanceSummaryResponse aggregates attendance for a date range.
type AttendanceSummaryResponse struct {
	From       string           `json:"from"`
	To         string           `json:"to"`
	Records    int64            `json:"records"`
	ByStatus   map[string]int64 `json:"by_status"`
	TotalHours float64          `json:"total_hours"`
}

// NewClockResponse converts clock fields into a DTO.
func NewClockResponse(clock models.Clock) ClockResponse {
	return ClockResponse{
		State:          clock.State,
		CheckInAt:      clock.CheckInAt,
		CheckOutAt:     clock.CheckOutAt,
		BreakStartedAt: clock.BreakStartedAt,
		BreakMinutes:   clock.BreakMinutes,
		BreakCount:     clock.BreakCount,
		TotalHours:     clock.TotalHours,
	}
}

// NewAttendanceResponse converts an attendance model into a DTO.
func NewAttendanceResponse(record models.Attendance) AttendanceResponse {
	return AttendanceResponse{
		ClockResponse: NewClockResponse(record.Clock),
		ID:            record.ID,
		TenantID:      record.TenantID,
		EmployeeID:    record.EmployeeID,
		Date:          record.Date,
		Status:        record.Status,
		Location:      record.Location,
		Notes:         record.Notes,
		Photos:        stringSlice(record.Photos),
		MarkedBy:      record.MarkedBy,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}

// ManagerCheckInRequest captures the site a manager clocks in at.
type ManagerCheckInRequest struct {
	Site    string `json:"site" validate:"omitempty,max=255"`
	Remarks string `json:"remarks" validate:"omitempty,max=2000"`
}

// ManagerCheckOutRequest captures closing remarks.
type ManagerCheckOutRequest struct {
	Remarks string `json:"remarks" validate:"omitempty,max=2000"`
}

// ManagerAttendanceListRequest defines filters for manager attendance.
type ManagerAttendanceListRequest struct {
	ListRequest
	Date      string `validate:"omitempty,datetime=2006-01-02"`
	From      string `validate:"omitempty,datetime=2006-01-02"`
	To        string `validate:"omitempty,datetime=2006-01-02"`
	ManagerID string
}

// ManagerAttendanceResponse serializes a manager attendance record.
type ManagerAttendanceResponse struct {
	ClockResponse
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	ManagerID string    `json:"manager_id"`
	Date      string    `json:"date"`
	Status    string    `json:"status"`
	Site      string    `json:"site"`
	Remarks   string    `json:"remarks"`
	Photos    []string  `json:"photos"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ManagerAttendanceTodayResponse reports a manager's current clock state.
type ManagerAttendanceTodayResponse struct {
	Date   string                     `json:"date"`
	State  string                     `json:"state"`
	Record *ManagerAttendanceResponse `json:"record"`
}

// NewManagerAttendanceResponse converts a manager attendance model into a DTO.
func NewManagerAttendanceResponse(record models.ManagerAttendance) ManagerAttendanceResponse {
	return ManagerAttendanceResponse{
		ClockResponse: NewClockResponse(record.Clock),
		ID:            record.ID,
		TenantID:      record.TenantID,
		ManagerID:     record.ManagerID,
		Date:          record.Date,
		Status:        record.Status,
		Site:          record.Site,
		Remarks:       record.Remarks,
		Photos:        stringSlice(record.Photos),
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}
