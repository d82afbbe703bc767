package attendance

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
)

// 2024-01-15 is a Monday.
var mondayUTC = schedule.WeeklySchedule{
	{DayOfWeek: schedule.Monday, Timezone: "UTC", StartTime: "09:00", ShiftDurationHours: 8},
}

func at(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func minutes(v float64) *float64 { return &v }

func classifyOne(t *testing.T, ev attendance.ClockEvent, s schedule.WeeklySchedule) attendance.ClassifiedEvent {
	t.Helper()
	out := ClassifyAll([]attendance.ClockEvent{ev}, s)
	require.Len(t, out, 1)
	return out[0]
}

func TestClassify_Scenarios(t *testing.T) {
	t.Run("on time arrival", func(t *testing.T) {
		got := classifyOne(t, attendance.ClockEvent{ID: "a", EmployeeID: "e1", OccurredAt: at(t, "2024-01-15T09:02:00Z")}, mondayUTC)
		assert.Equal(t, attendance.StatusOnTime, got.Status)
		require.NotNil(t, got.DeviationMinutes)
		assert.Equal(t, 2, *got.DeviationMinutes)
		require.NotNil(t, got.MatchedSchedule)
		assert.Equal(t, schedule.Monday, got.MatchedSchedule.DayOfWeek)
	})

	t.Run("late arrival", func(t *testing.T) {
		got := classifyOne(t, attendance.ClockEvent{ID: "b", OccurredAt: at(t, "2024-01-15T09:20:00Z")}, mondayUTC)
		assert.Equal(t, attendance.StatusLate, got.Status)
		require.NotNil(t, got.DeviationMinutes)
		assert.Equal(t, 20, *got.DeviationMinutes)
	})

	t.Run("completed regardless of arrival", func(t *testing.T) {
		got := classifyOne(t, attendance.ClockEvent{
			ID:                  "c",
			OccurredAt:          at(t, "2024-01-15T10:45:00Z"),
			WorkedMinutes:       minutes(500),
			HasExplicitClockOut: true,
		}, mondayUTC)
		assert.Equal(t, attendance.StatusCompleted, got.Status)
		require.NotNil(t, got.DeviationMinutes)
		assert.Equal(t, 105, *got.DeviationMinutes)
	})

	t.Run("no entry for the day", func(t *testing.T) {
		got := classifyOne(t, attendance.ClockEvent{ID: "d", OccurredAt: at(t, "2024-01-16T09:00:00Z")}, mondayUTC)
		assert.Equal(t, attendance.StatusNoSchedule, got.Status)
		assert.Nil(t, got.MatchedSchedule)
		assert.Nil(t, got.DeviationMinutes)
	})
}

func TestClassify_Boundaries(t *testing.T) {
	cases := []struct {
		offset time.Duration
		want   attendance.StatusLabel
	}{
		{5 * time.Minute, attendance.StatusOnTime},
		{-5 * time.Minute, attendance.StatusOnTime},
		{0, attendance.StatusOnTime},
		{6 * time.Minute, attendance.StatusLate},
		{-15 * time.Minute, attendance.StatusEarly},
		{-14 * time.Minute, attendance.StatusEarly},
		{-6 * time.Minute, attendance.StatusEarly},
		{-90 * time.Minute, attendance.StatusEarly},
		{3 * time.Hour, attendance.StatusLate},
		// 5.5 rounds to 6, -5.5 rounds to -5.
		{5*time.Minute + 30*time.Second, attendance.StatusLate},
		{-5*time.Minute - 30*time.Second, attendance.StatusOnTime},
		{5*time.Minute + 29*time.Second, attendance.StatusOnTime},
	}

	start := at(t, "2024-01-15T09:00:00Z")
	for _, c := range cases {
		got := classifyOne(t, attendance.ClockEvent{OccurredAt: start.Add(c.offset)}, mondayUTC)
		assert.Equal(t, c.want, got.Status, "offset %s", c.offset)
	}
}

func TestClassify_Priority(t *testing.T) {
	late := at(t, "2024-01-15T09:45:00Z")

	t.Run("completed outranks late", func(t *testing.T) {
		got := classifyOne(t, attendance.ClockEvent{OccurredAt: late, WorkedMinutes: minutes(480), HasExplicitClockOut: true}, mondayUTC)
		assert.Equal(t, attendance.StatusCompleted, got.Status)
	})

	t.Run("short shift with clock out falls through", func(t *testing.T) {
		got := classifyOne(t, attendance.ClockEvent{OccurredAt: late, WorkedMinutes: minutes(479), HasExplicitClockOut: true}, mondayUTC)
		assert.Equal(t, attendance.StatusLate, got.Status)
	})

	t.Run("no time out needs strictly more than the shift", func(t *testing.T) {
		got := classifyOne(t, attendance.ClockEvent{OccurredAt: late, WorkedMinutes: minutes(480)}, mondayUTC)
		assert.Equal(t, attendance.StatusLate, got.Status)

		got = classifyOne(t, attendance.ClockEvent{OccurredAt: late, WorkedMinutes: minutes(481)}, mondayUTC)
		assert.Equal(t, attendance.StatusNoTimeOut, got.Status)
		require.NotNil(t, got.DeviationMinutes)
		assert.Equal(t, 45, *got.DeviationMinutes)
	})

	t.Run("unknown worked minutes skip duration rules", func(t *testing.T) {
		got := classifyOne(t, attendance.ClockEvent{OccurredAt: late, HasExplicitClockOut: true}, mondayUTC)
		assert.Equal(t, attendance.StatusLate, got.Status)

		got = classifyOne(t, attendance.ClockEvent{OccurredAt: late, WorkedMinutes: minutes(math.NaN()), HasExplicitClockOut: true}, mondayUTC)
		assert.Equal(t, attendance.StatusLate, got.Status)
	})

	t.Run("non finite shift duration skips duration rules", func(t *testing.T) {
		s := schedule.WeeklySchedule{{DayOfWeek: schedule.Monday, Timezone: "UTC", StartTime: "09:00", ShiftDurationHours: math.NaN()}}
		got := classifyOne(t, attendance.ClockEvent{OccurredAt: late, WorkedMinutes: minutes(900), HasExplicitClockOut: true}, s)
		assert.Equal(t, attendance.StatusLate, got.Status)
	})
}

func TestClassify_Degrades(t *testing.T) {
	t.Run("zero instant", func(t *testing.T) {
		entry := mondayUTC[0]
		got := Classify(attendance.ClockEvent{ID: "z"}, &entry)
		assert.Equal(t, attendance.StatusNoSchedule, got.Status)
		assert.Nil(t, got.DeviationMinutes)
	})

	t.Run("nil entry", func(t *testing.T) {
		got := Classify(attendance.ClockEvent{OccurredAt: at(t, "2024-01-15T09:00:00Z")}, nil)
		assert.Equal(t, attendance.StatusNoSchedule, got.Status)
	})

	t.Run("malformed start time", func(t *testing.T) {
		entry := schedule.ScheduleEntry{DayOfWeek: schedule.Monday, Timezone: "UTC", StartTime: "9am", ShiftDurationHours: 8}
		got := Classify(attendance.ClockEvent{OccurredAt: at(t, "2024-01-15T09:00:00Z")}, &entry)
		assert.Equal(t, attendance.StatusNoSchedule, got.Status)
		assert.Nil(t, got.MatchedSchedule)
	})

	t.Run("invalid entry timezone", func(t *testing.T) {
		entry := schedule.ScheduleEntry{DayOfWeek: schedule.Monday, Timezone: "Nowhere/Land", StartTime: "09:00", ShiftDurationHours: 8}
		got := Classify(attendance.ClockEvent{OccurredAt: at(t, "2024-01-15T09:00:00Z")}, &entry)
		assert.Equal(t, attendance.StatusNoSchedule, got.Status)
	})

	t.Run("empty schedule", func(t *testing.T) {
		got := classifyOne(t, attendance.ClockEvent{OccurredAt: at(t, "2024-01-15T09:00:00Z")}, nil)
		assert.Equal(t, attendance.StatusNoSchedule, got.Status)
	})
}

func TestClassify_ZonedSchedule(t *testing.T) {
	manila := schedule.WeeklySchedule{
		{DayOfWeek: schedule.Tuesday, Timezone: "Asia/Manila", StartTime: "09:00", ShiftDurationHours: 8},
	}
	// 01:10Z on Tuesday is 09:10 in Manila.
	got := classifyOne(t, attendance.ClockEvent{OccurredAt: at(t, "2024-01-16T01:10:00Z")}, manila)
	assert.Equal(t, attendance.StatusLate, got.Status)
	require.NotNil(t, got.DeviationMinutes)
	assert.Equal(t, 10, *got.DeviationMinutes)

	ny := schedule.WeeklySchedule{
		{DayOfWeek: schedule.Monday, Timezone: "America/New_York", StartTime: "09:00", ShiftDurationHours: 8},
	}
	// Summer time: 09:00 EDT is 13:00Z.
	got = classifyOne(t, attendance.ClockEvent{OccurredAt: at(t, "2024-07-15T13:03:00Z")}, ny)
	assert.Equal(t, attendance.StatusOnTime, got.Status)
	require.NotNil(t, got.DeviationMinutes)
	assert.Equal(t, 3, *got.DeviationMinutes)
}

func TestClassify_Idempotent(t *testing.T) {
	ev := attendance.ClockEvent{ID: "x", OccurredAt: at(t, "2024-01-15T09:07:00Z"), WorkedMinutes: minutes(120)}
	first := classifyOne(t, ev, mondayUTC)
	second := classifyOne(t, ev, mondayUTC)
	assert.Equal(t, first, second)
	assert.Equal(t, ev, first.ClockEvent)
}

func TestClassifyAll_KeepsOrder(t *testing.T) {
	events := []attendance.ClockEvent{
		{ID: "3", OccurredAt: at(t, "2024-01-15T12:00:00Z")},
		{ID: "1", OccurredAt: at(t, "2024-01-15T08:00:00Z")},
		{ID: "2"},
	}
	out := ClassifyAll(events, mondayUTC)
	require.Len(t, out, 3)
	assert.Equal(t, "3", out[0].ID)
	assert.Equal(t, "1", out[1].ID)
	assert.Equal(t, "2", out[2].ID)
	assert.Equal(t, attendance.StatusNoSchedule, out[2].Status)
}
