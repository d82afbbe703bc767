package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
)

type EventKind string

const (
	EventKindIn      EventKind = "in"
	EventKindOut     EventKind = "out"
	EventKindUnknown EventKind = "unknown"
)

// ParseEventKind maps anything that is not in/out to unknown.
func ParseEventKind(s string) EventKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", "clock_in", "clockin", "time_in":
		return EventKindIn
	case "out", "clock_out", "clockout", "time_out":
		return EventKindOut
	default:
		return EventKindUnknown
	}
}

// ClockEvent is one normalized entry of an employee's raw attendance log.
// A zero OccurredAt marks an instant the source sent but that could not be parsed.
type ClockEvent struct {
	ID                  string
	EmployeeID          string
	OccurredAt          time.Time
	WorkedMinutes       *float64
	HasExplicitClockOut bool
	Kind                EventKind
	Notes               string
	DeviceTimezone      string
	ScheduleTimezone    string
}

type StatusLabel string

// Ordered from highest to lowest priority.
const (
	StatusCompleted  StatusLabel = "Completed"
	StatusNoTimeOut  StatusLabel = "No Time Out"
	StatusEarly      StatusLabel = "Early"
	StatusOnTime     StatusLabel = "On Time"
	StatusLate       StatusLabel = "Late"
	StatusNoSchedule StatusLabel = "No Schedule"
)

func AllStatusLabels() []StatusLabel {
	return []StatusLabel{
		StatusCompleted,
		StatusNoTimeOut,
		StatusEarly,
		StatusOnTime,
		StatusLate,
		StatusNoSchedule,
	}
}

// ParseStatusLabel is lenient about case, spacing and separators
// ("on_time", "On time", "ontime").
func ParseStatusLabel(s string) (StatusLabel, bool) {
	key := normalizeLabelKey(s)
	for _, l := range AllStatusLabels() {
		if normalizeLabelKey(string(l)) == key {
			return l, true
		}
	}
	return "", false
}

func normalizeLabelKey(s string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return r.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// BadgeClass is the CSS class the dashboard uses for each label.
func (l StatusLabel) BadgeClass() string {
	switch l {
	case StatusNoSchedule:
		return "nosched"
	case StatusEarly:
		return "early"
	case StatusOnTime:
		return "ontime"
	case StatusLate:
		return "late"
	case StatusCompleted:
		return "done"
	case StatusNoTimeOut:
		return "notimeout"
	default:
		return "warn"
	}
}

// ClassifiedEvent is a ClockEvent with its derived status. MatchedSchedule and
// DeviationMinutes are nil whenever Status is StatusNoSchedule.
type ClassifiedEvent struct {
	ClockEvent
	Status           StatusLabel
	MatchedSchedule  *schedule.ScheduleEntry
	DeviationMinutes *int

	// Joined from the employee record, empty until the pipeline joins identity.
	EmployeeName  string
	EmployeeEmail string
}
