package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/ingestion"
)

const RefreshSnapshotJob = "refresh_attendance_snapshot"

// AttendanceJobs keeps the snapshot current. Each run uses the default range
// ending today, so the window rolls forward at midnight UTC.
type AttendanceJobs struct {
	ingestionSvc ingestion.IngestionService
	interval     time.Duration
}

func NewAttendanceJobs(ingestionSvc ingestion.IngestionService, interval time.Duration) *AttendanceJobs {
	return &AttendanceJobs{
		ingestionSvc: ingestionSvc,
		interval:     interval,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(RefreshSnapshotJob, j.interval, j.RefreshSnapshot)
}

func (j *AttendanceJobs) RefreshSnapshot(ctx context.Context) error {
	resp, err := j.ingestionSvc.Refresh(ctx, ingestion.RefreshRequest{})
	if err != nil {
		if errors.Is(err, ingestion.ErrRefreshInProgress) {
			slog.Info("Cron: Refresh already running, skipping")
			return nil
		}
		return fmt.Errorf("failed to refresh attendance snapshot: %w", err)
	}

	slog.Info("Cron: Attendance snapshot refreshed",
		"version", resp.Version,
		"start_date", resp.StartDate,
		"end_date", resp.EndDate,
		"employees", resp.EmployeeCount,
		"events", resp.EventCount,
		"failed_employees", len(resp.Errors),
	)
	return nil
}
