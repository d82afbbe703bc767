package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/ingestion"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
	"github.com/jackc/pgx/v5"
)

type scheduleServiceImpl struct {
	scheduleRepo schedule.ScheduleRepository
	employeeRepo employee.EmployeeRepository
	snapshots    ingestion.SnapshotStore
}

// GetEmployeeSchedule implements schedule.ScheduleService.
// The stored schedule is preferred; without storage the latest snapshot is read.
func (s *scheduleServiceImpl) GetEmployeeSchedule(ctx context.Context, employeeID string) (schedule.WeeklyScheduleResponse, error) {
	if employeeID == "" {
		return schedule.WeeklyScheduleResponse{}, schedule.ErrEmployeeIDRequired
	}

	if s.scheduleRepo != nil && s.employeeRepo != nil {
		if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, employee.ErrEmployeeNotFound) {
				return schedule.WeeklyScheduleResponse{}, employee.ErrEmployeeNotFound
			}
			return schedule.WeeklyScheduleResponse{}, fmt.Errorf("failed to get employee: %w", err)
		}

		ws, err := s.scheduleRepo.GetByEmployeeID(ctx, employeeID)
		if err != nil {
			return schedule.WeeklyScheduleResponse{}, fmt.Errorf("failed to get schedule: %w", err)
		}
		return schedule.NewWeeklyScheduleResponse(employeeID, ws), nil
	}

	snap, ok := s.snapshots.Load()
	if !ok {
		return schedule.WeeklyScheduleResponse{}, schedule.ErrScheduleNotFound
	}
	if _, ok := snap.Employee(employeeID); !ok {
		return schedule.WeeklyScheduleResponse{}, employee.ErrEmployeeNotFound
	}
	return schedule.NewWeeklyScheduleResponse(employeeID, snap.ScheduleFor(employeeID)), nil
}

// ReplaceEmployeeSchedule implements schedule.ScheduleService.
// The change is visible to classification from the next refresh on.
func (s *scheduleServiceImpl) ReplaceEmployeeSchedule(ctx context.Context, req schedule.ReplaceScheduleRequest) (schedule.WeeklyScheduleResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.WeeklyScheduleResponse{}, err
	}

	if s.scheduleRepo == nil || s.employeeRepo == nil {
		return schedule.WeeklyScheduleResponse{}, schedule.ErrScheduleStoreDisabled
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, employee.ErrEmployeeNotFound) {
			return schedule.WeeklyScheduleResponse{}, employee.ErrEmployeeNotFound
		}
		return schedule.WeeklyScheduleResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	ws := req.ToWeeklySchedule()
	if err := s.scheduleRepo.ReplaceForEmployee(ctx, req.EmployeeID, ws); err != nil {
		return schedule.WeeklyScheduleResponse{}, fmt.Errorf("failed to replace schedule: %w", err)
	}

	slog.Info("schedule replaced", "employee_id", req.EmployeeID, "entries", len(ws))

	return schedule.NewWeeklyScheduleResponse(req.EmployeeID, ws), nil
}

// NewScheduleService wires the service. Both repositories may be nil when the
// database is disabled; reads then come from the snapshot store.
func NewScheduleService(
	scheduleRepo schedule.ScheduleRepository,
	employeeRepo employee.EmployeeRepository,
	snapshots ingestion.SnapshotStore,
) schedule.ScheduleService {
	return &scheduleServiceImpl{
		scheduleRepo: scheduleRepo,
		employeeRepo: employeeRepo,
		snapshots:    snapshots,
	}
}
