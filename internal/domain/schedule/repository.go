package schedule

import "context"

type ScheduleRepository interface {
	// GetByEmployeeID returns the entries ordered by day of week. An employee
	// without entries yields an empty schedule, not an error.
	GetByEmployeeID(ctx context.Context, employeeID string) (WeeklySchedule, error)

	// ReplaceForEmployee swaps the whole weekly schedule in one transaction.
	ReplaceForEmployee(ctx context.Context, employeeID string, schedule WeeklySchedule) error
}
