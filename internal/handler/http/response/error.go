package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/ingestion"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/hyacinth"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeIDRequired):
		BadRequest(w, "Employee ID is required", nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrSnapshotNotReady):
		ServiceUnavailable(w, "Attendance data has not been loaded yet, try again shortly")
	case errors.Is(err, attendance.ErrNothingToExport):
		NotFound(w, "No attendance logs match the filter")
	case errors.Is(err, attendance.ErrExportGenerateFail):
		slog.Error("Export failed", "error", err)
		InternalServerError(w, "Failed to generate export")

	// Ingestion domain errors
	case errors.Is(err, ingestion.ErrRefreshInProgress):
		Conflict(w, "A refresh is already running")
	case errors.Is(err, ingestion.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, hyacinth.ErrRemoteFailure), errors.Is(err, ingestion.ErrListEmployees):
		slog.Error("Upstream attendance source failed", "error", err)
		BadGateway(w, "Attendance source is unavailable")

	// Schedule domain errors
	case errors.Is(err, schedule.ErrScheduleNotFound):
		NotFound(w, "Schedule not found")
	case errors.Is(err, schedule.ErrInvalidRequestData):
		BadRequest(w, "Invalid request data", nil)
	case errors.Is(err, schedule.ErrScheduleStoreDisabled):
		ServiceUnavailable(w, "Schedule storage is not enabled")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
