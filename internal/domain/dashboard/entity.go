package dashboard

import "github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"

// AggregateResult is the roll-up of a set of classified events.
// Both count maps carry every status label, zero when unused.
type AggregateResult struct {
	TotalsByStatus map[attendance.StatusLabel]int64
	PerEmployee    map[string]EmployeeSummary
	KPIs           KPIs
}

type EmployeeSummary struct {
	EmployeeID string
	Counts     map[attendance.StatusLabel]int64
	Total      int64

	// Mean over events that carried a deviation; nil when none did.
	AverageDeviationMinutes *float64

	// Sum of the finite worked minutes reported on the employee's events.
	WorkedMinutes float64
}

// KPIs are the headline tiles of the dashboard. Averages are rounded to one
// decimal and are 0 when nothing contributed.
type KPIs struct {
	TotalEvents             int64
	ClockIns                int64
	ClockOuts               int64
	NoSchedule              int64
	AverageDeviationMinutes float64
	AverageWorkedMinutes    float64
}

// NewStatusCounts returns a map holding every label with a zero count.
func NewStatusCounts() map[attendance.StatusLabel]int64 {
	counts := make(map[attendance.StatusLabel]int64, len(attendance.AllStatusLabels()))
	for _, l := range attendance.AllStatusLabels() {
		counts[l] = 0
	}
	return counts
}
