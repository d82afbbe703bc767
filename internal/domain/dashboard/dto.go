package dashboard

import (
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
)

// ========== COMBINED DASHBOARD ==========

// SummaryResponse is the combined response for the main dashboard endpoint
type SummaryResponse struct {
	Snapshot       SnapshotMeta                         `json:"snapshot"`
	TotalsByStatus []StatusCount                        `json:"totals_by_status"`
	KPIs           KPIResponse                          `json:"kpis"`
	Employees      []EmployeeSummaryItem                `json:"employees"` // sorted by name
	Recent         []attendance.ClassifiedEventResponse `json:"recent"`    // latest 10
}

type SnapshotMeta struct {
	Version   string            `json:"version"`
	LoadedAt  string            `json:"loaded_at"` // RFC3339, UTC
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// ========== STATUS TOTALS ==========

// StatusCount is one slice of the status pie chart
type StatusCount struct {
	Status  string  `json:"status"`
	Class   string  `json:"class"`
	Count   int64   `json:"count"`
	Percent float64 `json:"percent"`
}

// ========== KPI TILES ==========

type KPIResponse struct {
	TotalEvents             int64   `json:"total_events"`
	ClockIns                int64   `json:"clock_ins"`
	ClockOuts               int64   `json:"clock_outs"`
	NoSchedule              int64   `json:"no_schedule"`
	AverageDeviationMinutes float64 `json:"average_deviation_minutes"`
	AverageWorkedMinutes    float64 `json:"average_worked_minutes"`
}

func NewKPIResponse(k KPIs) KPIResponse {
	return KPIResponse{
		TotalEvents:             k.TotalEvents,
		ClockIns:                k.ClockIns,
		ClockOuts:               k.ClockOuts,
		NoSchedule:              k.NoSchedule,
		AverageDeviationMinutes: k.AverageDeviationMinutes,
		AverageWorkedMinutes:    k.AverageWorkedMinutes,
	}
}

// ========== PER EMPLOYEE ==========

// EmployeeSummaryItem represents a single employee row of the dashboard
type EmployeeSummaryItem struct {
	EmployeeID              string        `json:"employee_id"`
	EmployeeName            string        `json:"employee_name"`
	EmployeeEmail           string        `json:"employee_email,omitempty"`
	Department              string        `json:"department,omitempty"`
	Total                   int64         `json:"total"`
	Counts                  []StatusCount `json:"counts"`
	AverageDeviationMinutes *float64      `json:"average_deviation_minutes,omitempty"`
	PlannedMinutes          float64       `json:"planned_minutes"` // scheduled shift minutes over the snapshot range
	WorkedMinutes           float64       `json:"worked_minutes"`
	WorkedPercent           float64       `json:"worked_percent"` // worked / planned, capped at 100
	FetchError              string        `json:"fetch_error,omitempty"`
}

// EmployeeSummaryResponse is the drill-down for one employee
type EmployeeSummaryResponse struct {
	Snapshot SnapshotMeta                         `json:"snapshot"`
	Summary  EmployeeSummaryItem                  `json:"summary"`
	KPIs     KPIResponse                          `json:"kpis"`
	Logs     []attendance.ClassifiedEventResponse `json:"logs"` // newest first
}
