package postgresql

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nan() float64 { return math.NaN() }

// setupTestDB connects to TEST_DATABASE_URL, applies migrations and empties the tables.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	require.NoError(t, database.RunMigrations(dsn))

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Exec(ctx, "TRUNCATE TABLE clock_events, schedule_entries, employees CASCADE")
	require.NoError(t, err)

	return db
}

func TestEmployeeRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewEmployeeRepository(db)

	err := repo.UpsertMany(ctx, []employee.Employee{
		{ID: "u2", Name: "bea", Email: "bea@example.com"},
		{ID: "u1", Name: "Ana", Department: "Ops"},
	})
	require.NoError(t, err)

	require.NoError(t, repo.UpsertMany(ctx, []employee.Employee{{ID: "u1", Name: "Ana Cruz", Department: "Ops"}}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ana Cruz", list[0].Name)
	assert.Equal(t, "bea", list[1].Name)

	got, err := repo.GetByID(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "bea@example.com", got.Email)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestScheduleRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewEmployeeRepository(db).UpsertMany(ctx, []employee.Employee{{ID: "u1", Name: "Ana"}}))
	repo := NewScheduleRepository(db)

	first := schedule.WeeklySchedule{
		{DayOfWeek: schedule.Wednesday, Timezone: "UTC", StartTime: "09:00", ShiftDurationHours: 8},
		{DayOfWeek: schedule.Monday, Timezone: "UTC", StartTime: "09:00", ShiftDurationHours: nan()},
	}
	require.NoError(t, repo.ReplaceForEmployee(ctx, "u1", first))

	got, err := repo.GetByEmployeeID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, schedule.Monday, got[0].DayOfWeek)
	assert.True(t, math.IsNaN(got[0].ShiftDurationHours))
	assert.Equal(t, 8.0, got[1].ShiftDurationHours)

	second := schedule.WeeklySchedule{
		{DayOfWeek: schedule.Friday, Timezone: "Asia/Manila", StartTime: "22:00", ShiftDurationHours: 9},
	}
	require.NoError(t, repo.ReplaceForEmployee(ctx, "u1", second))

	got, err = repo.GetByEmployeeID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Asia/Manila", got[0].Timezone)

	empty, err := repo.GetByEmployeeID(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestClockEventRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewEmployeeRepository(db).UpsertMany(ctx, []employee.Employee{{ID: "u1", Name: "Ana"}}))
	repo := NewClockEventRepository(db)

	worked := 480.0
	inRange := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	err := repo.UpsertMany(ctx, []attendance.ClockEvent{
		{ID: "a", EmployeeID: "u1", OccurredAt: inRange, Kind: attendance.EventKindIn},
		{ID: "b", EmployeeID: "u1", OccurredAt: inRange.Add(9 * time.Hour), WorkedMinutes: &worked, HasExplicitClockOut: true, Kind: attendance.EventKindOut},
		{ID: "c", EmployeeID: "u1", OccurredAt: inRange.AddDate(0, 0, 10)},
		{ID: "d", EmployeeID: "u1"},
	})
	require.NoError(t, err)

	events, err := repo.ListByEmployeeAndRange(ctx, "u1", inRange.Truncate(24*time.Hour), inRange.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "a", events[0].ID)
	assert.Nil(t, events[0].WorkedMinutes)
	assert.Equal(t, "b", events[1].ID)
	require.NotNil(t, events[1].WorkedMinutes)
	assert.Equal(t, 480.0, *events[1].WorkedMinutes)
	assert.True(t, events[1].HasExplicitClockOut)
	assert.Equal(t, "d", events[2].ID)
	assert.True(t, events[2].OccurredAt.IsZero())
	assert.Equal(t, attendance.EventKindUnknown, events[2].Kind)
}
