package attendance

import (
	"bytes"
	"context"
)

type AttendanceService interface {
	// ListLogs classifies the current snapshot and returns one filtered page.
	ListLogs(ctx context.Context, filter LogFilter) (ListLogsResponse, error)

	// Classified returns every classified event matching the filter, sorted by
	// filter.SortOrder, without pagination.
	Classified(ctx context.Context, filter LogFilter) ([]ClassifiedEvent, error)

	// ExportLogs renders the filtered logs as an XLSX workbook.
	ExportLogs(ctx context.Context, filter LogFilter) (*bytes.Buffer, string, error)
}

// EventPublisher receives every classified event after a refresh.
type EventPublisher interface {
	PublishClassified(ctx context.Context, events []ClassifiedEvent) error
	Close() error
}
