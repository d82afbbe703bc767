package ingestion

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
)

const (
	MinRangeDays     = 1
	MaxRangeDays     = 60
	DefaultRangeDays = 7
)

type RefreshRequest struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD, defaults to today (UTC)
	RangeDays int     `json:"range_days,omitempty"` // used when start_date is absent
}

func (r *RefreshRequest) Validate() error {
	var errs validator.ValidationErrors

	var start, end time.Time
	var hasStart, hasEnd bool
	if r.StartDate != nil && *r.StartDate != "" {
		if start, hasStart = validator.IsValidDate(*r.StartDate); !hasStart {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must use YYYY-MM-DD format",
			})
		}
	}
	if r.EndDate != nil && *r.EndDate != "" {
		if end, hasEnd = validator.IsValidDate(*r.EndDate); !hasEnd {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must use YYYY-MM-DD format",
			})
		}
	}
	if hasStart && hasEnd {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must not be before start_date",
			})
		} else if days := int(end.Sub(start).Hours()/24) + 1; days > MaxRangeDays {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "date range must not exceed 60 days",
			})
		}
	}

	if r.RangeDays < 0 || r.RangeDays > MaxRangeDays {
		errs = append(errs, validator.ValidationError{
			Field:   "range_days",
			Message: "range_days must be between 1 and 60",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Resolve turns the request into a concrete [start, end] pair of dates.
// Validate must have succeeded. A zero RangeDays uses defaultDays. An explicit
// start is checked against the resolved end, which defaults to today.
func (r RefreshRequest) Resolve(today time.Time, defaultDays int) (string, string, error) {
	y, m, d := today.UTC().Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if r.EndDate != nil && *r.EndDate != "" {
		end, _ = validator.IsValidDate(*r.EndDate)
	}

	if r.StartDate != nil && *r.StartDate != "" {
		start, _ := validator.IsValidDate(*r.StartDate)
		if end.Before(start) {
			return "", "", fmt.Errorf("%w: start_date %s is after end_date %s",
				ErrInvalidDateRange, start.Format("2006-01-02"), end.Format("2006-01-02"))
		}
		if days := int(end.Sub(start).Hours()/24) + 1; days > MaxRangeDays {
			return "", "", fmt.Errorf("%w: %d days exceeds the %d day limit", ErrInvalidDateRange, days, MaxRangeDays)
		}
		return start.Format("2006-01-02"), end.Format("2006-01-02"), nil
	}

	days := r.RangeDays
	if days == 0 {
		days = defaultDays
	}
	days = min(max(days, MinRangeDays), MaxRangeDays)

	start := end.AddDate(0, 0, -(days - 1))
	return start.Format("2006-01-02"), end.Format("2006-01-02"), nil
}

type RefreshResponse struct {
	Version        string            `json:"version"`
	LoadedAt       string            `json:"loaded_at"`
	StartDate      string            `json:"start_date"`
	EndDate        string            `json:"end_date"`
	EmployeeCount  int               `json:"employee_count"`
	EventCount     int               `json:"event_count"`
	DurationMillis int64             `json:"duration_ms"`
	Errors         map[string]string `json:"errors,omitempty"`
}

func NewRefreshResponse(s *Snapshot, took time.Duration) RefreshResponse {
	return RefreshResponse{
		Version:        s.Version.String(),
		LoadedAt:       s.LoadedAt.UTC().Format(time.RFC3339),
		StartDate:      s.StartDate,
		EndDate:        s.EndDate,
		EmployeeCount:  len(s.Employees),
		EventCount:     s.EventCount(),
		DurationMillis: took.Milliseconds(),
		Errors:         s.Errors,
	}
}
