package dto

import (
	"time"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// LeaveCreateRequest captures a leave application.
type LeaveCreateRequest struct {
	Type      string `json:"type" validate:"required,oneof=annual sick unpaid other"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" validate:"omitempty,max=2000"`
}

// LeaveReviewRequest captures an optional reviewer note.
type LeaveReviewRequest struct {
	Note string `json:"note" validate:"omitempty,max=2000"`
}

// LeaveListRequest defines filters for leave listings.
type LeaveListRequest struct {
	ListRequest
	Status     string
	Type       string
	EmployeeID string
}

// LeaveResponse serializes a leave request.
type LeaveResponse struct {
	ID         string     `json:"id"`
	TenantID   string     `json:"tenant_id"`
	EmployeeID string     `json:"employee_id"`
	Type       string     `json:"type"`
	StartDate  string     `json:"start_date"`
	EndDate    string     `json:"end_date"`
	Days       int        `json:"days"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	ReviewedBy *string    `json:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at"`
	ReviewNote string     `json:"review_note"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewLeaveResponse converts a leave model into a DTO.
func NewLeaveResponse(leave models.LeaveRequest) LeaveResponse {
	return LeaveResponse{
		ID:         leave.ID,
		TenantID:   leave.TenantID,
		EmployeeID: leave.EmployeeID,
		Type:       leave.Type,
		StartDate:  leave.StartDate,
		EndDate:    leave.EndDate,
		Days:       leave.Days,
		Reason:     leave.Reason,
		Status:     leave.Status,
		ReviewedBy: leave.ReviewedBy,
		ReviewedAt: leave.ReviewedAt,
		ReviewNote: leave.ReviewNote,
		CreatedAt:  leave.CreatedAt,
	}
}
