package schedule

import (
	"strconv"
	"strings"
	"time"
)

// DayOfWeek follows the ISO numbering used across the schedule tables.
type DayOfWeek int

const (
	Monday    DayOfWeek = 1
	Tuesday   DayOfWeek = 2
	Wednesday DayOfWeek = 3
	Thursday  DayOfWeek = 4
	Friday    DayOfWeek = 5
	Saturday  DayOfWeek = 6
	Sunday    DayOfWeek = 7
)

var dayNames = map[DayOfWeek]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
	Sunday:    "Sunday",
}

func (d DayOfWeek) String() string {
	if name, ok := dayNames[d]; ok {
		return name
	}
	return "DayOfWeek(" + strconv.Itoa(int(d)) + ")"
}

func (d DayOfWeek) Valid() bool {
	return d >= Monday && d <= Sunday
}

// DayOfWeekFromWeekday converts a stdlib weekday (Sunday=0) to DayOfWeek (Sunday=7).
func DayOfWeekFromWeekday(w time.Weekday) DayOfWeek {
	if w == time.Sunday {
		return Sunday
	}
	return DayOfWeek(w)
}

// ParseDayOfWeek accepts "Monday", "mon", "MON" or "1".."7".
func ParseDayOfWeek(s string) (DayOfWeek, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(v); err == nil {
		if d := DayOfWeek(n); d.Valid() {
			return d, nil
		}
		return 0, ErrInvalidDayOfWeek
	}
	if len(v) < 3 {
		return 0, ErrInvalidDayOfWeek
	}
	for d, name := range dayNames {
		full := strings.ToLower(name)
		if v == full || v == full[:3] {
			return d, nil
		}
	}
	return 0, ErrInvalidDayOfWeek
}

// ScheduleEntry is one day of an employee's weekly schedule.
type ScheduleEntry struct {
	DayOfWeek          DayOfWeek
	Timezone           string // IANA identifier
	StartTime          string // HH:MM wall clock in Timezone
	ShiftDurationHours float64
}

// WeeklySchedule holds at most one entry per day. When a day repeats the first
// entry wins.
type WeeklySchedule []ScheduleEntry

// ReferenceTimezone is the zone used to decide which weekday an instant falls on.
// Schedules are expected to share one zone; when they do not the first entry wins.
func (s WeeklySchedule) ReferenceTimezone() string {
	if len(s) == 0 {
		return ""
	}
	return s[0].Timezone
}

func (s WeeklySchedule) Clone() WeeklySchedule {
	if s == nil {
		return nil
	}
	out := make(WeeklySchedule, len(s))
	copy(out, s)
	return out
}

// EntryFor returns a copy of the first entry for day.
func (s WeeklySchedule) EntryFor(day DayOfWeek) (ScheduleEntry, bool) {
	for _, e := range s {
		if e.DayOfWeek == day {
			return e, true
		}
	}
	return ScheduleEntry{}, false
}
