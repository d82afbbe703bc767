package ingestion

import "errors"

var (
	ErrRefreshInProgress = errors.New("a refresh is already running")
	ErrInvalidDateRange  = errors.New("invalid date range")
	ErrListEmployees     = errors.New("failed to list employees")
)
