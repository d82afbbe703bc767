package attendance

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/ingestion"
	dashboardService "github.com/cmlabs-hris/attendance-engine-go/internal/service/dashboard"
)

type AttendanceServiceImpl struct {
	snapshots ingestion.SnapshotStore
}

// ListLogs implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListLogs(ctx context.Context, filter attendance.LogFilter) (attendance.ListLogsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListLogsResponse{}, err
	}

	snap, ok := s.snapshots.Load()
	if !ok {
		return attendance.ListLogsResponse{}, attendance.ErrSnapshotNotReady
	}

	events := filterAndSort(ClassifySnapshot(snap), filter)
	totalCount := int64(len(events))

	totalPages := int(math.Ceil(float64(totalCount) / float64(filter.Limit)))

	// Pages past the end are empty and never compute an offset.
	offset := 0
	pageEvents := []attendance.ClassifiedEvent{}
	if filter.Page <= totalPages {
		offset = (filter.Page - 1) * filter.Limit
		pageEvents = events[offset:min(offset+filter.Limit, len(events))]
	}

	logs := make([]attendance.ClassifiedEventResponse, 0, len(pageEvents))
	for _, ev := range pageEvents {
		logs = append(logs, attendance.NewClassifiedEventResponse(ev))
	}

	// Calculate "showing" text
	start := offset + 1
	end := start + len(logs) - 1
	if end > int(totalCount) {
		end = int(totalCount)
	}

	showing := fmt.Sprintf("%d-%d of %d results", start, end, totalCount)
	if totalCount == 0 {
		showing = "0 results"
	} else if len(logs) == 0 {
		showing = fmt.Sprintf("0 of %d results", totalCount)
	}

	return attendance.ListLogsResponse{
		SnapshotVersion: snap.Version.String(),
		StartDate:       snap.StartDate,
		EndDate:         snap.EndDate,
		TotalCount:      totalCount,
		Page:            filter.Page,
		Limit:           filter.Limit,
		TotalPages:      totalPages,
		Showing:         showing,
		Errors:          snap.Errors,
		Logs:            logs,
	}, nil
}

// Classified implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Classified(ctx context.Context, filter attendance.LogFilter) ([]attendance.ClassifiedEvent, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	snap, ok := s.snapshots.Load()
	if !ok {
		return nil, attendance.ErrSnapshotNotReady
	}

	return filterAndSort(ClassifySnapshot(snap), filter), nil
}

func filterAndSort(events []attendance.ClassifiedEvent, filter attendance.LogFilter) []attendance.ClassifiedEvent {
	out := make([]attendance.ClassifiedEvent, 0, len(events))
	for _, ev := range events {
		if filter.Matches(ev) {
			out = append(out, ev)
		}
	}
	dashboardService.SortByOccurredAt(out, !strings.EqualFold(filter.SortOrder, "asc"))
	return out
}

func NewAttendanceService(snapshots ingestion.SnapshotStore) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		snapshots: snapshots,
	}
}
