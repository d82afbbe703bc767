package schedule

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/zoneclock"
)

// MatchedEntry returns the entry governing instant. The weekday is read in the
// schedule's reference timezone (its first entry), so a Monday-evening event
// in Los Angeles matches the Tuesday entry of a Manila schedule.
//
// It reports false for an empty schedule, a zero instant, an unloadable
// reference timezone or a day without an entry.
func MatchedEntry(s schedule.WeeklySchedule, instant time.Time) (schedule.ScheduleEntry, bool) {
	if len(s) == 0 || instant.IsZero() {
		return schedule.ScheduleEntry{}, false
	}

	weekday, err := zoneclock.WeekdayOf(instant, s.ReferenceTimezone())
	if err != nil {
		return schedule.ScheduleEntry{}, false
	}

	return s.EntryFor(schedule.DayOfWeekFromWeekday(weekday))
}
