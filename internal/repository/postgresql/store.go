package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/ingestion"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
)

// Store adapts the repositories to the refresh source and sink.
type Store struct {
	employeeRepo   employee.EmployeeRepository
	scheduleRepo   schedule.ScheduleRepository
	clockEventRepo attendance.ClockEventRepository
}

var (
	_ ingestion.Source = (*Store)(nil)
	_ ingestion.Sink   = (*Store)(nil)
)

func NewStore(
	employeeRepo employee.EmployeeRepository,
	scheduleRepo schedule.ScheduleRepository,
	clockEventRepo attendance.ClockEventRepository,
) *Store {
	return &Store{
		employeeRepo:   employeeRepo,
		scheduleRepo:   scheduleRepo,
		clockEventRepo: clockEventRepo,
	}
}

// NewStoreSource reads refresh data from the local tables.
func NewStoreSource(
	employeeRepo employee.EmployeeRepository,
	scheduleRepo schedule.ScheduleRepository,
	clockEventRepo attendance.ClockEventRepository,
) ingestion.Source {
	return NewStore(employeeRepo, scheduleRepo, clockEventRepo)
}

func (s *Store) ListEmployees(ctx context.Context) ([]employee.Employee, error) {
	return s.employeeRepo.List(ctx)
}

func (s *Store) GetSchedule(ctx context.Context, employeeID string) (schedule.WeeklySchedule, error) {
	return s.scheduleRepo.GetByEmployeeID(ctx, employeeID)
}

// GetClockEvents reads events whose UTC date falls within the inclusive range.
func (s *Store) GetClockEvents(ctx context.Context, employeeID, startDate, endDate string) ([]attendance.ClockEvent, error) {
	from, to, err := utcDayRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	return s.clockEventRepo.ListByEmployeeAndRange(ctx, employeeID, from, to)
}

func (s *Store) SaveEmployees(ctx context.Context, employees []employee.Employee) error {
	return s.employeeRepo.UpsertMany(ctx, employees)
}

func (s *Store) SaveSchedule(ctx context.Context, employeeID string, ws schedule.WeeklySchedule) error {
	return s.scheduleRepo.ReplaceForEmployee(ctx, employeeID, ws)
}

func (s *Store) SaveClockEvents(ctx context.Context, events []attendance.ClockEvent) error {
	return s.clockEventRepo.UpsertMany(ctx, events)
}

// utcDayRange returns [start 00:00, end+1 00:00) in UTC.
func utcDayRange(startDate, endDate string) (time.Time, time.Time, error) {
	from, ok := validator.IsValidDate(startDate)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q", startDate)
	}
	to, ok := validator.IsValidDate(endDate)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q", endDate)
	}
	return from.UTC(), to.UTC().AddDate(0, 0, 1), nil
}
