package ingestion

import (
	"context"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
)

// Source is where a refresh reads from: the remote attendance API or the
// local Postgres store. Dates are YYYY-MM-DD, inclusive.
type Source interface {
	ListEmployees(ctx context.Context) ([]employee.Employee, error)
	GetSchedule(ctx context.Context, employeeID string) (schedule.WeeklySchedule, error)
	GetClockEvents(ctx context.Context, employeeID, startDate, endDate string) ([]attendance.ClockEvent, error)
}

// Sink persists what a refresh fetched.
type Sink interface {
	SaveEmployees(ctx context.Context, employees []employee.Employee) error
	SaveSchedule(ctx context.Context, employeeID string, s schedule.WeeklySchedule) error
	SaveClockEvents(ctx context.Context, events []attendance.ClockEvent) error
}

// SnapshotStore holds the latest published snapshot.
type SnapshotStore interface {
	Load() (*Snapshot, bool)
	Store(s *Snapshot)
}

// SnapshotListener is notified after a snapshot is published.
type SnapshotListener interface {
	SnapshotPublished(ctx context.Context, s *Snapshot)
}
