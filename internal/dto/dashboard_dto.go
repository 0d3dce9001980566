package dto

import "time"

// DashboardResponse is the role-specific landing summary. Sections not
// relevant to the effective role are omitted.
type DashboardResponse struct {
	Role                string              `json:"role"`
	GeneratedAt         time.Time           `json:"generated_at"`
	Tenants             *int64              `json:"tenants,omitempty"`
	Users               *int64              `json:"users,omitempty"`
	Headcount           *int64              `json:"headcount,omitempty"`
	AttendanceToday     map[string]int64    `json:"attendance_today,omitempty"`
	PendingLeaves       *int64              `json:"pending_leaves,omitempty"`
	OpenAlerts          *int64              `json:"open_alerts,omitempty"`
	OpenLeads           *int64              `json:"open_leads,omitempty"`
	OutstandingInvoices *float64            `json:"outstanding_invoices,omitempty"`
	PendingExpenses     *int64              `json:"pending_expenses,omitempty"`
	Today               *AttendanceResponse `json:"today,omitempty"`
	MonthHours          *float64            `json:"month_hours,omitempty"`
}
