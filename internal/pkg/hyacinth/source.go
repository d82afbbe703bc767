package hyacinth

import (
	"context"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
)

// Source reads a department's employees, schedules and logs from the remote API.
type Source struct {
	client       *Client
	departmentID string
}

func NewSource(client *Client, departmentID string) *Source {
	return &Source{client: client, departmentID: departmentID}
}

// ListEmployees implements ingestion.Source.
func (s *Source) ListEmployees(ctx context.Context) ([]employee.Employee, error) {
	records, err := s.client.GetUsersByDepartment(ctx, s.departmentID)
	if err != nil {
		return nil, err
	}
	return NormalizeEmployees(records), nil
}

// GetSchedule implements ingestion.Source.
func (s *Source) GetSchedule(ctx context.Context, employeeID string) (schedule.WeeklySchedule, error) {
	records, err := s.client.GetUserSchedule(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return NormalizeSchedule(records), nil
}

// GetClockEvents implements ingestion.Source.
func (s *Source) GetClockEvents(ctx context.Context, employeeID, startDate, endDate string) ([]attendance.ClockEvent, error) {
	records, err := s.client.GetAttendanceLogs(ctx, employeeID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return NormalizeClockEvents(employeeID, records), nil
}
