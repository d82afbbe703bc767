package schedule

import "context"

type ScheduleService interface {
	GetEmployeeSchedule(ctx context.Context, employeeID string) (WeeklyScheduleResponse, error)
	ReplaceEmployeeSchedule(ctx context.Context, req ReplaceScheduleRequest) (WeeklyScheduleResponse, error)
}
