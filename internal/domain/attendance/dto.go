package attendance

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE LOG DTOs
// ========================================

type LogFilter struct {
	// Search & Filter
	Query      *string `json:"q,omitempty"` // substring of name, email or employee id
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD, UTC date of the event
	EndDate    *string `json:"end_date,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting by event instant
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *LogFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil && *f.Status != "" {
		if _, ok := ParseStatusLabel(*f.Status); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: completed, no_time_out, early, on_time, late, no_schedule",
			})
		}
	}

	var start, end time.Time
	var hasStart, hasEnd bool
	if f.StartDate != nil && *f.StartDate != "" {
		if start, hasStart = validator.IsValidDate(*f.StartDate); !hasStart {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must use YYYY-MM-DD format",
			})
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if end, hasEnd = validator.IsValidDate(*f.EndDate); !hasEnd {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must use YYYY-MM-DD format",
			})
		}
	}
	if hasStart && hasEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if f.SortOrder != "" {
		validSortOrders := []string{"asc", "desc"}
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), validSortOrders) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // Default descending (newest first)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Matches applies the search and filter fields, ignoring pagination.
func (f LogFilter) Matches(e ClassifiedEvent) bool {
	if f.EmployeeID != nil && *f.EmployeeID != "" && e.EmployeeID != *f.EmployeeID {
		return false
	}
	if f.Status != nil && *f.Status != "" {
		if want, ok := ParseStatusLabel(*f.Status); ok && e.Status != want {
			return false
		}
	}
	if f.StartDate != nil || f.EndDate != nil {
		if e.OccurredAt.IsZero() {
			return false
		}
		day := e.OccurredAt.UTC().Format("2006-01-02")
		if f.StartDate != nil && *f.StartDate != "" && day < *f.StartDate {
			return false
		}
		if f.EndDate != nil && *f.EndDate != "" && day > *f.EndDate {
			return false
		}
	}
	if f.Query != nil {
		q := strings.ToLower(strings.TrimSpace(*f.Query))
		if q != "" &&
			!strings.Contains(strings.ToLower(e.EmployeeName), q) &&
			!strings.Contains(strings.ToLower(e.EmployeeEmail), q) &&
			!strings.Contains(strings.ToLower(e.EmployeeID), q) {
			return false
		}
	}
	return true
}

type ScheduleMatchResponse struct {
	DayOfWeek          string  `json:"day_of_week"`
	Timezone           string  `json:"timezone"`
	StartTime          string  `json:"start_time"`
	ShiftDurationHours float64 `json:"shift_duration_hours"`
}

type ClassifiedEventResponse struct {
	ID               string                 `json:"id"`
	EmployeeID       string                 `json:"employee_id"`
	EmployeeName     string                 `json:"employee_name"`
	EmployeeEmail    string                 `json:"employee_email,omitempty"`
	Type             string                 `json:"type"`
	Status           string                 `json:"status"`
	StatusClass      string                 `json:"status_class"`
	Timestamp        *string                `json:"timestamp,omitempty"` // RFC3339, UTC
	DeviationMinutes *int                   `json:"deviation_minutes,omitempty"`
	WorkedMinutes    *float64               `json:"worked_minutes,omitempty"`
	WorkedText       string                 `json:"worked_text"`
	Notes            string                 `json:"notes,omitempty"`
	DeviceTimezone   string                 `json:"device_timezone,omitempty"`
	ScheduleTimezone string                 `json:"schedule_timezone,omitempty"`
	MatchedSchedule  *ScheduleMatchResponse `json:"matched_schedule,omitempty"`
}

func NewClassifiedEventResponse(e ClassifiedEvent) ClassifiedEventResponse {
	var ts *string
	if !e.OccurredAt.IsZero() {
		s := e.OccurredAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		ts = &s
	}

	schedTz := e.ScheduleTimezone
	var match *ScheduleMatchResponse
	if e.MatchedSchedule != nil {
		match = newScheduleMatchResponse(*e.MatchedSchedule)
		if schedTz == "" {
			schedTz = e.MatchedSchedule.Timezone
		}
	}

	return ClassifiedEventResponse{
		ID:               e.ID,
		EmployeeID:       e.EmployeeID,
		EmployeeName:     e.EmployeeName,
		EmployeeEmail:    e.EmployeeEmail,
		Type:             string(e.Kind),
		Status:           string(e.Status),
		StatusClass:      e.Status.BadgeClass(),
		Timestamp:        ts,
		DeviationMinutes: e.DeviationMinutes,
		WorkedMinutes:    e.WorkedMinutes,
		WorkedText:       FormatWorkedMinutes(e.WorkedMinutes),
		Notes:            e.Notes,
		DeviceTimezone:   e.DeviceTimezone,
		ScheduleTimezone: schedTz,
		MatchedSchedule:  match,
	}
}

func newScheduleMatchResponse(s schedule.ScheduleEntry) *ScheduleMatchResponse {
	return &ScheduleMatchResponse{
		DayOfWeek:          s.DayOfWeek.String(),
		Timezone:           s.Timezone,
		StartTime:          s.StartTime,
		ShiftDurationHours: s.ShiftDurationHours,
	}
}

// FormatWorkedMinutes renders minutes as "8hrs,32min", or "—" when unknown.
func FormatWorkedMinutes(minutes *float64) string {
	if minutes == nil || math.IsNaN(*minutes) || math.IsInf(*minutes, 0) {
		return "—"
	}
	total := int(math.Floor(*minutes + 0.5))
	hrs := total / 60
	rem := total % 60
	return strconv.Itoa(hrs) + "hrs," + strconv.Itoa(rem) + "min"
}

type ListLogsResponse struct {
	SnapshotVersion string                    `json:"snapshot_version"`
	StartDate       string                    `json:"start_date"`
	EndDate         string                    `json:"end_date"`
	TotalCount      int64                     `json:"total_count"`
	Page            int                       `json:"page"`
	Limit           int                       `json:"limit"`
	TotalPages      int                       `json:"total_pages"`
	Showing         string                    `json:"showing"`
	Errors          map[string]string         `json:"errors,omitempty"` // employee id -> fetch error
	Logs            []ClassifiedEventResponse `json:"logs"`
}
