package hyacinth

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmployees(t *testing.T) {
	got := NormalizeEmployees([]map[string]any{
		{"userId": "u1", "fullName": "Ana Cruz", "email": "ana@example.com", "department": "Ops"},
		{"id": "u2", "firstName": "Ben", "lastName": ""},
		{"uid": json.Number("3"), "email": "c@example.com"},
		{"employeeId": "u4"},
		{"fullName": "No Id"},
		{"userId": "   ", "id": "u6", "name": "  "},
	})

	require.Len(t, got, 5)
	assert.Equal(t, "Ana Cruz", got[0].Name)
	assert.Equal(t, "Ops", got[0].Department)
	assert.Equal(t, "Ben", got[1].Name)
	assert.Equal(t, "3", got[2].ID)
	assert.Equal(t, "c@example.com", got[2].Name)
	assert.Equal(t, "Unknown", got[3].Name)
	assert.Equal(t, "u6", got[4].ID)
	assert.Equal(t, "Unknown", got[4].Name)
}

func TestNormalizeSchedule(t *testing.T) {
	got := NormalizeSchedule([]map[string]any{
		{"dayOfWeek": "Monday", "timeRegion": "Asia/Manila", "timeIn": "09:00", "shiftDuration": json.Number("8")},
		{"day": "0", "timeIn": "22:00", "shiftDuration": "9.5"},
		{"dayOfWeek": "Funday", "timeIn": "09:00", "shiftDuration": 8.0},
		{"dayOfWeek": "wed", "timezone": "Europe/Berlin", "startTime": "10:00"},
	})

	require.Len(t, got, 3)

	assert.Equal(t, schedule.Monday, got[0].DayOfWeek)
	assert.Equal(t, "Asia/Manila", got[0].Timezone)
	assert.Equal(t, 8.0, got[0].ShiftDurationHours)

	assert.Equal(t, schedule.Sunday, got[1].DayOfWeek)
	assert.Equal(t, "UTC", got[1].Timezone)
	assert.Equal(t, 9.5, got[1].ShiftDurationHours)

	assert.Equal(t, schedule.Wednesday, got[2].DayOfWeek)
	assert.Equal(t, "10:00", got[2].StartTime)
	assert.True(t, math.IsNaN(got[2].ShiftDurationHours))
}

func TestNormalizeClockEvents(t *testing.T) {
	got := NormalizeClockEvents("u1", []map[string]any{
		{"id": "l1", "timestamp": "2024-01-15T09:03:00+08:00", "type": "in", "notes": "gate 2"},
		{"timestamp": "2024-01-15T18:00:00Z", "timeOut": "2024-01-15T18:00:00Z", "timeDiff": json.Number("540")},
		{"logId": "l3", "createdAt": "2024-01-16 09:00:00", "type": "clock_out"},
		{"id": "l4", "timestamp": "not a date"},
	})

	require.Len(t, got, 4)

	assert.Equal(t, "l1", got[0].ID)
	assert.Equal(t, time.Date(2024, 1, 15, 1, 3, 0, 0, time.UTC), got[0].OccurredAt)
	assert.Equal(t, attendance.EventKindIn, got[0].Kind)
	assert.False(t, got[0].HasExplicitClockOut)
	assert.Nil(t, got[0].WorkedMinutes)
	assert.Equal(t, "gate 2", got[0].Notes)

	assert.Equal(t, "u1-1", got[1].ID)
	assert.True(t, got[1].HasExplicitClockOut)
	require.NotNil(t, got[1].WorkedMinutes)
	assert.Equal(t, 540.0, *got[1].WorkedMinutes)
	assert.Equal(t, attendance.EventKindUnknown, got[1].Kind)

	assert.Equal(t, time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC), got[2].OccurredAt)
	assert.True(t, got[2].HasExplicitClockOut)

	assert.True(t, got[3].OccurredAt.IsZero())
	for _, e := range got {
		assert.Equal(t, "u1", e.EmployeeID)
	}
}

func TestParseInstant(t *testing.T) {
	want := time.Date(2024, 1, 15, 1, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		record map[string]any
		ok     bool
	}{
		{"rfc3339 offset", map[string]any{"timestamp": "2024-01-15T09:00:00+08:00"}, true},
		{"rfc3339 nano", map[string]any{"timestamp": "2024-01-15T01:00:00.000Z"}, true},
		{"zone-less", map[string]any{"timestamp": "2024-01-15T01:00:00"}, true},
		{"epoch ms number", map[string]any{"timestamp": json.Number("1705280400000")}, true},
		{"epoch ms string", map[string]any{"time": "1705280400000"}, true},
		{"epoch ms float", map[string]any{"timestamp": float64(1705280400000)}, true},
		{"firestore", map[string]any{"createdAt": map[string]any{"_seconds": json.Number("1705280400"), "_nanoseconds": json.Number("0")}}, true},
		{"empty string falls through", map[string]any{"timestamp": "", "createdAt": "2024-01-15T01:00:00Z"}, true},
		{"missing", map[string]any{}, false},
		{"garbage", map[string]any{"timestamp": "yesterday"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseInstant(tt.record)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, want.Equal(got), "got %s", got)
			}
		})
	}
}
