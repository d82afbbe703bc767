package schedule

import (
	"fmt"
	"math"

	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/zoneclock"
)

// ========================================
// WEEKLY SCHEDULE DTOs
// ========================================

type ScheduleEntryRequest struct {
	DayOfWeek          string  `json:"day_of_week"` // Monday, mon or 1..7
	Timezone           string  `json:"timezone"`    // IANA identifier
	StartTime          string  `json:"start_time"`  // HH:MM
	ShiftDurationHours float64 `json:"shift_duration_hours"`
}

type ReplaceScheduleRequest struct {
	EmployeeID string                 `json:"-"`
	Entries    []ScheduleEntryRequest `json:"entries"`
}

func (r *ReplaceScheduleRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	seen := make(map[DayOfWeek]bool, len(r.Entries))
	for i, e := range r.Entries {
		prefix := fmt.Sprintf("entries[%d].", i)

		day, err := ParseDayOfWeek(e.DayOfWeek)
		if err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   prefix + "day_of_week",
				Message: "day_of_week must be a weekday name, abbreviation or 1-7",
			})
		} else if seen[day] {
			errs = append(errs, validator.ValidationError{
				Field:   prefix + "day_of_week",
				Message: day.String() + " appears more than once",
			})
		} else {
			seen[day] = true
		}

		if !validator.IsValidTimezone(e.Timezone) {
			errs = append(errs, validator.ValidationError{
				Field:   prefix + "timezone",
				Message: "timezone must be a valid IANA identifier",
			})
		}

		if !validator.IsValidWallTime(e.StartTime) {
			errs = append(errs, validator.ValidationError{
				Field:   prefix + "start_time",
				Message: "start_time must use HH:MM format",
			})
		}

		if math.IsNaN(e.ShiftDurationHours) || e.ShiftDurationHours <= 0 || e.ShiftDurationHours > 24 {
			errs = append(errs, validator.ValidationError{
				Field:   prefix + "shift_duration_hours",
				Message: "shift_duration_hours must be greater than 0 and at most 24",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ToWeeklySchedule must only be called after Validate succeeded.
func (r *ReplaceScheduleRequest) ToWeeklySchedule() WeeklySchedule {
	out := make(WeeklySchedule, 0, len(r.Entries))
	for _, e := range r.Entries {
		day, _ := ParseDayOfWeek(e.DayOfWeek)
		out = append(out, ScheduleEntry{
			DayOfWeek:          day,
			Timezone:           e.Timezone,
			StartTime:          e.StartTime,
			ShiftDurationHours: e.ShiftDurationHours,
		})
	}
	return out
}

type ScheduleEntryResponse struct {
	DayOfWeek          string  `json:"day_of_week"`
	DayNumber          int     `json:"day_number"`
	Timezone           string  `json:"timezone"`
	StartTime          string  `json:"start_time"`
	ShiftDurationHours float64 `json:"shift_duration_hours"`
	ScheduledEnd       *string `json:"scheduled_end,omitempty"` // HH:MM, next day when past midnight
}

type WeeklyScheduleResponse struct {
	EmployeeID        string                  `json:"employee_id"`
	ReferenceTimezone string                  `json:"reference_timezone,omitempty"`
	Entries           []ScheduleEntryResponse `json:"entries"`
}

func NewWeeklyScheduleResponse(employeeID string, s WeeklySchedule) WeeklyScheduleResponse {
	entries := make([]ScheduleEntryResponse, 0, len(s))
	for _, e := range s {
		entries = append(entries, ScheduleEntryResponse{
			DayOfWeek:          e.DayOfWeek.String(),
			DayNumber:          int(e.DayOfWeek),
			Timezone:           e.Timezone,
			StartTime:          e.StartTime,
			ShiftDurationHours: e.ShiftDurationHours,
			ScheduledEnd:       scheduledEnd(e),
		})
	}
	return WeeklyScheduleResponse{
		EmployeeID:        employeeID,
		ReferenceTimezone: s.ReferenceTimezone(),
		Entries:           entries,
	}
}

func scheduledEnd(e ScheduleEntry) *string {
	h, m, err := zoneclock.ParseWallTime(e.StartTime)
	if err != nil || math.IsNaN(e.ShiftDurationHours) || math.IsInf(e.ShiftDurationHours, 0) {
		return nil
	}
	total := h*60 + m + int(math.Round(e.ShiftDurationHours*60))
	end := fmt.Sprintf("%02d:%02d", (total/60)%24, total%60)
	if total >= 24*60 {
		end += " (+1)"
	}
	return &end
}
