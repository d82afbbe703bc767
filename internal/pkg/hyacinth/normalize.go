package hyacinth

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
)

// pick returns the first key whose value is present and not an empty string.
func pick(obj map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func pickString(obj map[string]any, keys ...string) string {
	v, ok := pick(obj, keys...)
	if !ok {
		return ""
	}
	return stringify(v)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// pickNumber accepts JSON numbers and numeric strings.
func pickNumber(obj map[string]any, keys ...string) (float64, bool) {
	v, ok := pick(obj, keys...)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// NormalizeEmployees maps raw user records to employees. Records without an
// id are dropped.
func NormalizeEmployees(records []map[string]any) []employee.Employee {
	out := make([]employee.Employee, 0, len(records))
	for _, r := range records {
		id := pickString(r, "userId", "id", "uid", "employeeId")
		if id == "" {
			continue
		}
		out = append(out, employee.Employee{
			ID:         id,
			Name:       normalizeName(r),
			Email:      pickString(r, "email"),
			Department: pickString(r, "department", "departmentName", "dept"),
			Role:       pickString(r, "role", "title", "position"),
			AvatarURL:  pickString(r, "avatar", "photoUrl", "photoURL", "profilePhoto"),
			Timezone:   pickString(r, "timezone", "timeZone", "tz"),
		})
	}
	return out
}

func normalizeName(r map[string]any) string {
	if full := pickString(r, "fullName", "displayName", "name"); full != "" {
		return full
	}
	first := pickString(r, "firstName", "first_name", "givenName")
	last := pickString(r, "lastName", "last_name", "familyName")
	if first != "" || last != "" {
		return strings.TrimSpace(first + " " + last)
	}
	if v := pickString(r, "email", "username"); v != "" {
		return v
	}
	return "Unknown"
}

// NormalizeSchedule maps raw schedule entries. Entries whose day cannot be
// read are dropped; other fields pass through as sent so classification can
// degrade them to No Schedule.
func NormalizeSchedule(records []map[string]any) schedule.WeeklySchedule {
	out := make(schedule.WeeklySchedule, 0, len(records))
	for _, r := range records {
		raw := pickString(r, "dayOfWeek", "day")
		if raw == "0" {
			raw = "Sunday" // JS weekday numbering
		}
		day, err := schedule.ParseDayOfWeek(raw)
		if err != nil {
			continue
		}

		tz := pickString(r, "timeRegion", "timezone", "timeZone", "tz")
		if tz == "" {
			tz = "UTC"
		}

		duration, ok := pickNumber(r, "shiftDuration", "shift_duration", "duration")
		if !ok {
			duration = math.NaN()
		}

		out = append(out, schedule.ScheduleEntry{
			DayOfWeek:          day,
			Timezone:           tz,
			StartTime:          pickString(r, "timeIn", "startTime", "start_time", "start"),
			ShiftDurationHours: duration,
		})
	}
	return out
}

var clockOutKeys = []string{"timeOut", "time_out", "clockOut", "timestampOut", "outTimestamp"}

// NormalizeClockEvents maps raw logs of one employee.
func NormalizeClockEvents(employeeID string, records []map[string]any) []attendance.ClockEvent {
	out := make([]attendance.ClockEvent, 0, len(records))
	for i, r := range records {
		occurredAt, _ := parseInstant(r)

		id := pickString(r, "id", "logId", "_id")
		if id == "" {
			id = fmt.Sprintf("%s-%d", employeeID, i)
		}

		kind := attendance.ParseEventKind(pickString(r, "type"))

		var worked *float64
		if m, ok := pickNumber(r, "timeDiff", "diff", "workedMinutes"); ok {
			worked = &m
		}

		_, hasOut := pick(r, clockOutKeys...)

		out = append(out, attendance.ClockEvent{
			ID:                  id,
			EmployeeID:          employeeID,
			OccurredAt:          occurredAt,
			WorkedMinutes:       worked,
			HasExplicitClockOut: hasOut || kind == attendance.EventKindOut,
			Kind:                kind,
			Notes:               pickString(r, "notes", "remark", "message"),
			DeviceTimezone:      pickString(r, "deviceTimezone", "deviceTZ"),
			ScheduleTimezone:    pickString(r, "scheduleTimezone", "scheduleTZ"),
		})
	}
	return out
}

var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseInstant reads timestamp|createdAt|time as an RFC3339 string, epoch
// milliseconds, or a {_seconds, _nanoseconds} object. Zone-less strings are UTC.
func parseInstant(r map[string]any) (time.Time, bool) {
	v, ok := pick(r, "timestamp", "createdAt", "time")
	if !ok {
		return time.Time{}, false
	}

	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range instantLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), true
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
	case json.Number:
		if ms, err := t.Int64(); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
		if f, err := t.Float64(); err == nil {
			return time.UnixMilli(int64(f)).UTC(), true
		}
	case float64:
		return time.UnixMilli(int64(t)).UTC(), true
	case map[string]any:
		secs, ok := pickNumber(t, "_seconds", "seconds")
		if !ok {
			return time.Time{}, false
		}
		nanos, _ := pickNumber(t, "_nanoseconds", "nanoseconds")
		return time.Unix(int64(secs), int64(nanos)).UTC(), true
	}
	return time.Time{}, false
}
