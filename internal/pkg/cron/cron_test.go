package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIngestion struct {
	calls atomic.Int32
	err   error
}

func (f *fakeIngestion) Refresh(ctx context.Context, req ingestion.RefreshRequest) (ingestion.RefreshResponse, error) {
	f.calls.Add(1)
	if f.err != nil {
		return ingestion.RefreshResponse{}, f.err
	}
	return ingestion.RefreshResponse{Version: "v1", StartDate: "2024-01-01", EndDate: "2024-01-07"}, nil
}

func TestScheduler_RunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler(context.Background())

	var runs atomic.Int32
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	s.Start()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_IgnoresInvalidAndLateJobs(t *testing.T) {
	s := NewScheduler(context.Background())
	s.AddJob("zero", 0, func(ctx context.Context) error { return nil })
	s.AddJob("ok", time.Minute, func(ctx context.Context) error { return nil })
	s.Start()
	defer s.Stop()
	s.AddJob("late", time.Minute, func(ctx context.Context) error { return nil })

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "ok", jobs[0].Name)
}

func TestAttendanceJobs_RefreshSnapshot(t *testing.T) {
	t.Run("registers refresh job", func(t *testing.T) {
		s := NewScheduler(context.Background())
		NewAttendanceJobs(&fakeIngestion{}, time.Minute).RegisterJobs(s)

		jobs := s.Jobs()
		require.Len(t, jobs, 1)
		assert.Equal(t, RefreshSnapshotJob, jobs[0].Name)
		assert.Equal(t, time.Minute, jobs[0].Interval)
	})

	t.Run("success", func(t *testing.T) {
		svc := &fakeIngestion{}
		require.NoError(t, NewAttendanceJobs(svc, time.Minute).RefreshSnapshot(context.Background()))
		assert.Equal(t, int32(1), svc.calls.Load())
	})

	t.Run("refresh in progress is not a failure", func(t *testing.T) {
		svc := &fakeIngestion{err: ingestion.ErrRefreshInProgress}
		assert.NoError(t, NewAttendanceJobs(svc, time.Minute).RefreshSnapshot(context.Background()))
	})

	t.Run("other errors propagate", func(t *testing.T) {
		boom := errors.New("boom")
		svc := &fakeIngestion{err: boom}
		err := NewAttendanceJobs(svc, time.Minute).RefreshSnapshot(context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("run once", func(t *testing.T) {
		svc := &fakeIngestion{}
		s := NewScheduler(context.Background())
		NewAttendanceJobs(svc, time.Minute).RegisterJobs(s)
		s.RunOnce(context.Background())
		assert.Equal(t, int32(1), svc.calls.Load())
	})
}
