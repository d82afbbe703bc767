package attendance

import "errors"

// Attendance domain errors
var (
	// Snapshot errors
	ErrSnapshotNotReady = errors.New("attendance data has not been loaded yet")

	// Export errors
	ErrNothingToExport    = errors.New("no attendance logs match the filter")
	ErrExportGenerateFail = errors.New("failed to generate excel file")
)
