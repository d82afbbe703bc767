package ingestion

import (
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
)

// Snapshot is one complete load of employees, schedules and clock events for
// a date range. A published snapshot is never mutated; readers get clones of
// the schedules they need.
type Snapshot struct {
	Version   uuid.UUID
	LoadedAt  time.Time
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD

	Employees []employee.Employee
	Schedules map[string]schedule.WeeklySchedule // by employee id
	Events    map[string][]attendance.ClockEvent // by employee id

	// Per-employee fetch failures, by employee id.
	Errors map[string]string
}

// Employee looks up an employee of the snapshot by id.
func (s *Snapshot) Employee(id string) (employee.Employee, bool) {
	for _, e := range s.Employees {
		if e.ID == id {
			return e, true
		}
	}
	return employee.Employee{}, false
}

// ScheduleFor returns a copy of the employee's schedule, empty when unknown.
func (s *Snapshot) ScheduleFor(employeeID string) schedule.WeeklySchedule {
	return s.Schedules[employeeID].Clone()
}

func (s *Snapshot) EventCount() int {
	n := 0
	for _, evs := range s.Events {
		n += len(evs)
	}
	return n
}
