package attendance

import (
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/zoneclock"
	scheduleService "github.com/cmlabs-hris/attendance-engine-go/internal/service/schedule"
)

// Deviation thresholds in minutes, relative to the scheduled start.
const (
	EarlyThresholdMinutes  = -15
	OnTimeToleranceMinutes = 5
)

// Classify derives the status of one event against the entry matched for it.
// Rules are evaluated in order and the first that holds wins:
//
//	no entry or no instant            No Schedule
//	scheduled start not computable    No Schedule
//	clocked out, worked >= shift      Completed
//	not clocked out, worked > shift   No Time Out
//	deviation <= -15                  Early
//	-5 <= deviation <= 5              On Time
//	deviation > 5                     Late
//	otherwise                         Early
//
// Classify never fails; malformed inputs degrade to No Schedule.
func Classify(event attendance.ClockEvent, entry *schedule.ScheduleEntry) attendance.ClassifiedEvent {
	out := attendance.ClassifiedEvent{
		ClockEvent: event,
		Status:     attendance.StatusNoSchedule,
	}
	if entry == nil || event.OccurredAt.IsZero() {
		return out
	}

	start, ok := scheduledStart(event.OccurredAt, *entry)
	if !ok {
		return out
	}

	matched := *entry
	deviation := roundHalfUp(float64(event.OccurredAt.Sub(start)) / float64(time.Minute))
	out.MatchedSchedule = &matched
	out.DeviationMinutes = &deviation

	if shift := entry.ShiftDurationHours; !math.IsNaN(shift) && !math.IsInf(shift, 0) {
		if worked, ok := workedHours(event.WorkedMinutes); ok {
			if event.HasExplicitClockOut && worked >= shift {
				out.Status = attendance.StatusCompleted
				return out
			}
			if !event.HasExplicitClockOut && worked > shift {
				out.Status = attendance.StatusNoTimeOut
				return out
			}
		}
	}

	switch {
	case deviation <= EarlyThresholdMinutes:
		out.Status = attendance.StatusEarly
	case deviation >= -OnTimeToleranceMinutes && deviation <= OnTimeToleranceMinutes:
		out.Status = attendance.StatusOnTime
	case deviation > OnTimeToleranceMinutes:
		out.Status = attendance.StatusLate
	default:
		out.Status = attendance.StatusEarly
	}
	return out
}

// ClassifyAll classifies every event of one employee against their schedule.
// The result has the same length and order as events.
func ClassifyAll(events []attendance.ClockEvent, s schedule.WeeklySchedule) []attendance.ClassifiedEvent {
	out := make([]attendance.ClassifiedEvent, 0, len(events))
	for _, ev := range events {
		var entry *schedule.ScheduleEntry
		if e, ok := scheduleService.MatchedEntry(s, ev.OccurredAt); ok {
			entry = &e
		}
		out = append(out, Classify(ev, entry))
	}
	return out
}

// scheduledStart is the instant the shift starts on the calendar date the
// event falls on in the entry's timezone.
func scheduledStart(instant time.Time, entry schedule.ScheduleEntry) (time.Time, bool) {
	date, err := zoneclock.DateOf(instant, entry.Timezone)
	if err != nil {
		return time.Time{}, false
	}
	start, err := zoneclock.ToInstant(date, entry.StartTime, entry.Timezone)
	if err != nil {
		return time.Time{}, false
	}
	return start, true
}

func workedHours(minutes *float64) (float64, bool) {
	if minutes == nil || math.IsNaN(*minutes) || math.IsInf(*minutes, 0) {
		return 0, false
	}
	return *minutes / 60, true
}

// roundHalfUp rounds halves toward positive infinity: 2.5 -> 3, -2.5 -> -2.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
