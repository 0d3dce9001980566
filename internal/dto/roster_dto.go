package dto

import (
	"time"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// RosterShiftPayload is one day of a submitted roster.
type RosterShiftPayload struct {
	Day   string `json:"day" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	Start string `json:"start" validate:"omitempty,datetime=15:04"`
	End   string `json:"end" validate:"omitempty,datetime=15:04"`
	Off   bool   `json:"off"`
}

// RosterCreateRequest captures a new weekly roster.
type RosterCreateRequest struct {
	EmployeeID   string               `json:"employee_id" validate:"required,max=36"`
	EmployeeName string               `json:"employee_name" validate:"omitempty,max=255"`
	Site         string               `json:"site" validate:"required,max=255"`
	WeekStart    string               `json:"week_start" validate:"omitempty,datetime=2006-01-02"`
	Shifts       []RosterShiftPayload `json:"shifts" validate:"omitempty,max=7,dive"`
	Status       string               `json:"status" validate:"omitempty,oneof=draft published"`
	Notes        string               `json:"notes" validate:"omitempty,max=2000"`
}

// RosterUpdateRequest captures partial roster updates.
type RosterUpdateRequest struct {
	EmployeeID   *string              `json:"employee_id" validate:"omitempty,min=1,max=36"`
	EmployeeName *string              `json:"employee_name" validate:"omitempty,max=255"`
	Site         *string              `json:"site" validate:"omitempty,min=1,max=255"`
	WeekStart    *string              `json:"week_start" validate:"omitempty,datetime=2006-01-02"`
	Shifts       []RosterShiftPayload `json:"shifts" validate:"omitempty,max=7,dive"`
	Status       *string              `json:"status" validate:"omitempty,oneof=draft published"`
	Notes        *string              `json:"notes" validate:"omitempty,max=2000"`
}

// RosterListRequest defines filters for roster listings.
type RosterListRequest struct {
	ListRequest
	Site       string
	WeekStart  string
	Status     string
	EmployeeID string
}

// RosterResponse serializes a roster.
type RosterResponse struct {
	ID           string               `json:"id"`
	TenantID     string               `json:"tenant_id"`
	EmployeeID   string               `json:"employee_id"`
	EmployeeName string               `json:"employee_name"`
	Site         string               `json:"site"`
	OwnerType    string               `json:"owner_type"`
	CreatedBy    string               `json:"created_by"`
	WeekStart    string               `json:"week_start"`
	Shifts       []models.RosterShift `json:"shifts"`
	Status       string               `json:"status"`
	Notes        string               `json:"notes"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// NewRosterResponse converts a roster model into a DTO.
func NewRosterResponse(roster models.Roster) RosterResponse {
	shifts := []models.RosterShift(roster.Shifts)
	if shifts == nil {
		shifts = []models.RosterShift{}
	}
	return RosterResponse{
		ID:           roster.ID,
		TenantID:     roster.TenantID,
		EmployeeID:   roster.EmployeeID,
		EmployeeName: roster.EmployeeName,
		Site:         roster.Site,
		OwnerType:    roster.OwnerType,
		CreatedBy:    roster.CreatedBy,
		WeekStart:    roster.WeekStart,
		Shifts:       shifts,
		Status:       roster.Status,
		Notes:        roster.Notes,
		CreatedAt:    roster.CreatedAt,
		UpdatedAt:    roster.UpdatedAt,
	}
}

// ShiftsFromPayload converts submitted shifts into model values.
func ShiftsFromPayload(payload []RosterShiftPayload) []models.RosterShift {
	shifts := make([]models.RosterShift, 0, len(payload))
	for _, item := range payload {
		shift := models.RosterShift{Day: item.Day, Off: item.Off}
		if !item.Off {
			shift.Start = item.Start
			shift.End = item.End
		}
		shifts = append(shifts, shift)
	}
	return shifts
}
