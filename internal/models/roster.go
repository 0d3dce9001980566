package models

import "gorm.io/datatypes"

// Roster statuses.
const (
	RosterStatusDraft     = "draft"
	RosterStatusPublished = "published"
)

// RosterShift is one day of a weekly roster.
type RosterShift struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
	Off   bool   `json:"off"`
}

// Roster assigns an employee to a site with a weekly shift pattern.
// OwnerType is the view role of the creator and scopes duplicate detection.
type Roster struct {
	Record
	TenantID     string                          `gorm:"size:36;index;not null" json:"tenant_id"`
	EmployeeID   string                          `gorm:"size:36;index;not null" json:"employee_id"`
	EmployeeName string                          `gorm:"size:255" json:"employee_name"`
	Site         string                          `gorm:"size:255;not null" json:"site"`
	OwnerType    string                          `gorm:"size:32;index;not null" json:"owner_type"`
	CreatedBy    string                          `gorm:"size:36;index;not null" json:"created_by"`
	WeekStart    string                          `gorm:"size:10" json:"week_start"`
	Shifts       datatypes.JSONSlice[RosterShift] `gorm:"type:json" json:"shifts"`
	Status       string                          `gorm:"size:16;not null" json:"status"`
	Notes        string                          `gorm:"type:text" json:"notes"`
}
