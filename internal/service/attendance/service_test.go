package attendance

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/ingestion"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
)

type memoryStore struct{ snap *ingestion.Snapshot }

func (m *memoryStore) Load() (*ingestion.Snapshot, bool) { return m.snap, m.snap != nil }
func (m *memoryStore) Store(s *ingestion.Snapshot)         { m.snap = s }

func strPtr(s string) *string { return &s }

func testSnapshot(t *testing.T) *ingestion.Snapshot {
	t.Helper()
	worked := 500.0
	return &ingestion.Snapshot{
		Version:   uuid.Must(uuid.NewV7()),
		LoadedAt:  time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		StartDate: "2024-01-10",
		EndDate:   "2024-01-16",
		Employees: []employee.Employee{
			{ID: "e1", Name: "Ana Cruz", Email: "ana@example.com"},
			{ID: "e2", Email: "ben@example.com"},
		},
		Schedules: map[string]schedule.WeeklySchedule{
			"e1": {{DayOfWeek: schedule.Monday, Timezone: "UTC", StartTime: "09:00", ShiftDurationHours: 8}},
			"e2": {{DayOfWeek: schedule.Monday, Timezone: "Asia/Manila", StartTime: "09:00", ShiftDurationHours: 8}},
		},
		Events: map[string][]attendance.ClockEvent{
			"e1": {
				{ID: "a", EmployeeID: "e1", OccurredAt: at(t, "2024-01-15T09:02:00Z"), Kind: attendance.EventKindIn},
				{ID: "b", EmployeeID: "e1", OccurredAt: at(t, "2024-01-15T17:30:00Z"), Kind: attendance.EventKindOut, WorkedMinutes: &worked, HasExplicitClockOut: true},
				{ID: "c", EmployeeID: "e1", OccurredAt: at(t, "2024-01-16T09:00:00Z"), Kind: attendance.EventKindIn},
			},
			"e2": {
				{ID: "d", EmployeeID: "e2", OccurredAt: at(t, "2024-01-15T01:20:00Z"), Kind: attendance.EventKindIn},
			},
			"ghost": {
				{ID: "g", EmployeeID: "ghost", OccurredAt: at(t, "2024-01-15T10:00:00Z")},
			},
		},
		Errors: map[string]string{},
	}
}

func TestClassifySnapshot(t *testing.T) {
	events := ClassifySnapshot(testSnapshot(t))
	require.Len(t, events, 5)

	byID := map[string]attendance.ClassifiedEvent{}
	for _, ev := range events {
		byID[ev.ID] = ev
	}

	assert.Equal(t, attendance.StatusOnTime, byID["a"].Status)
	assert.Equal(t, "Ana Cruz", byID["a"].EmployeeName)
	assert.Equal(t, attendance.StatusCompleted, byID["b"].Status)
	assert.Equal(t, attendance.StatusNoSchedule, byID["c"].Status)
	assert.Equal(t, attendance.StatusLate, byID["d"].Status)
	assert.Equal(t, "ben@example.com", byID["d"].EmployeeName)
	assert.Equal(t, attendance.StatusNoSchedule, byID["g"].Status)
	assert.Equal(t, "Unknown", byID["g"].EmployeeName)

	assert.Nil(t, ClassifySnapshot(nil))
}

func TestListLogs(t *testing.T) {
	store := &memoryStore{}
	svc := NewAttendanceService(store)

	_, err := svc.ListLogs(context.Background(), attendance.LogFilter{})
	require.ErrorIs(t, err, attendance.ErrSnapshotNotReady)

	store.Store(testSnapshot(t))

	t.Run("defaults to newest first", func(t *testing.T) {
		resp, err := svc.ListLogs(context.Background(), attendance.LogFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(5), resp.TotalCount)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 20, resp.Limit)
		assert.Equal(t, 1, resp.TotalPages)
		assert.Equal(t, "1-5 of 5 results", resp.Showing)
		require.Len(t, resp.Logs, 5)
		assert.Equal(t, "c", resp.Logs[0].ID)
		assert.Equal(t, "d", resp.Logs[4].ID)
	})

	t.Run("pagination ascending", func(t *testing.T) {
		resp, err := svc.ListLogs(context.Background(), attendance.LogFilter{Page: 2, Limit: 2, SortOrder: "asc"})
		require.NoError(t, err)
		assert.Equal(t, 3, resp.TotalPages)
		assert.Equal(t, "3-4 of 5 results", resp.Showing)
		require.Len(t, resp.Logs, 2)
		assert.Equal(t, "g", resp.Logs[0].ID)
		assert.Equal(t, "b", resp.Logs[1].ID)
	})

	t.Run("page past the end", func(t *testing.T) {
		resp, err := svc.ListLogs(context.Background(), attendance.LogFilter{Page: 9, Limit: 2})
		require.NoError(t, err)
		assert.Empty(t, resp.Logs)
		assert.Equal(t, "0 of 5 results", resp.Showing)
	})

	t.Run("huge page number", func(t *testing.T) {
		page := math.MaxInt/20 + 2
		resp, err := svc.ListLogs(context.Background(), attendance.LogFilter{Page: page, Limit: 20})
		require.NoError(t, err)
		assert.Empty(t, resp.Logs)
		assert.Equal(t, page, resp.Page)
		assert.Equal(t, 1, resp.TotalPages)
		assert.Equal(t, "0 of 5 results", resp.Showing)
	})

	t.Run("search and status filter", func(t *testing.T) {
		resp, err := svc.ListLogs(context.Background(), attendance.LogFilter{Query: strPtr("ANA@"), Status: strPtr("on_time")})
		require.NoError(t, err)
		require.Len(t, resp.Logs, 1)
		assert.Equal(t, "a", resp.Logs[0].ID)
		assert.Equal(t, "ontime", resp.Logs[0].StatusClass)
	})

	t.Run("employee and date filter", func(t *testing.T) {
		resp, err := svc.ListLogs(context.Background(), attendance.LogFilter{
			EmployeeID: strPtr("e1"),
			StartDate:  strPtr("2024-01-16"),
			EndDate:    strPtr("2024-01-16"),
		})
		require.NoError(t, err)
		require.Len(t, resp.Logs, 1)
		assert.Equal(t, "c", resp.Logs[0].ID)
	})

	t.Run("no matches", func(t *testing.T) {
		resp, err := svc.ListLogs(context.Background(), attendance.LogFilter{Query: strPtr("nobody")})
		require.NoError(t, err)
		assert.Equal(t, "0 results", resp.Showing)
		assert.NotNil(t, resp.Logs)
	})

	t.Run("invalid filter", func(t *testing.T) {
		_, err := svc.ListLogs(context.Background(), attendance.LogFilter{Limit: 500, Status: strPtr("absent"), SortOrder: "sideways"})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		m := verrs.ToMap()
		assert.Contains(t, m, "limit")
		assert.Contains(t, m, "status")
		assert.Contains(t, m, "sort_order")
	})
}

func TestExportLogs(t *testing.T) {
	store := &memoryStore{snap: testSnapshot(t)}
	svc := NewAttendanceService(store)

	buf, filename, err := svc.ExportLogs(context.Background(), attendance.LogFilter{EmployeeID: strPtr("e1"), SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, "attendance_2024-01-10_2024-01-16.xlsx", filename)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "e1", rows[1][0])
	assert.Equal(t, "On Time", rows[1][4])
	assert.Equal(t, "2024-01-15 09:02:00", rows[1][5])
	assert.Equal(t, "2", rows[1][6])
	assert.Equal(t, "Completed", rows[2][4])
	assert.Equal(t, "8hrs,20min", rows[2][7])
	assert.Equal(t, "Monday", rows[2][8])

	_, _, err = svc.ExportLogs(context.Background(), attendance.LogFilter{Query: strPtr("nobody")})
	assert.ErrorIs(t, err, attendance.ErrNothingToExport)
}

type fakeRecorder struct{ counts map[attendance.StatusLabel]int64 }

func (f *fakeRecorder) SetClassified(c map[attendance.StatusLabel]int64) { f.counts = c }

type fakeBroadcaster struct {
	topic  string
	events []sse.Event
}

func (f *fakeBroadcaster) Publish(topic string, ev sse.Event) {
	f.topic = topic
	f.events = append(f.events, ev)
}

type fakePublisher struct {
	events []attendance.ClassifiedEvent
	err    error
}

func (f *fakePublisher) PublishClassified(ctx context.Context, events []attendance.ClassifiedEvent) error {
	f.events = events
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

func TestNotifier(t *testing.T) {
	rec := &fakeRecorder{}
	bc := &fakeBroadcaster{}
	pub := &fakePublisher{err: errors.New("ignored")}

	snap := testSnapshot(t)
	NewNotifier(rec, bc, pub).SnapshotPublished(context.Background(), snap)

	assert.Equal(t, int64(2), rec.counts[attendance.StatusNoSchedule])
	assert.Equal(t, int64(1), rec.counts[attendance.StatusLate])

	assert.Equal(t, sse.TopicAttendance, bc.topic)
	require.Len(t, bc.events, 1)
	payload, ok := bc.events[0].Data.(SnapshotEvent)
	require.True(t, ok)
	assert.Equal(t, snap.Version.String(), payload.Version)
	assert.Equal(t, int64(5), payload.TotalEvents)
	assert.Equal(t, int64(1), payload.TotalsByStatus["Completed"])

	assert.Len(t, pub.events, 5)
}
