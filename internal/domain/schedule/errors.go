package schedule

import "errors"

var (
	ErrScheduleNotFound   = errors.New("schedule not found")
	ErrInvalidDayOfWeek   = errors.New("invalid day of week")
	ErrDuplicateDayOfWeek = errors.New("day of week appears more than once")

	// Validation Errors
	ErrEmployeeIDRequired = errors.New("employee ID is required")
	ErrInvalidRequestData = errors.New("invalid request data")

	// Storage Errors
	ErrScheduleStoreDisabled = errors.New("schedule storage is not enabled")
)
