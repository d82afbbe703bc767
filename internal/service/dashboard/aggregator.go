package dashboard

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/zoneclock"
)

// Aggregate rolls classified events into status totals, per-employee
// summaries and the KPI tiles. Order of events does not matter.
func Aggregate(events []attendance.ClassifiedEvent) dashboard.AggregateResult {
	result := dashboard.AggregateResult{
		TotalsByStatus: dashboard.NewStatusCounts(),
		PerEmployee:    make(map[string]dashboard.EmployeeSummary),
	}

	type deviationSum struct {
		sum   int64
		count int64
	}
	perEmployeeDev := make(map[string]*deviationSum)

	var (
		allDev, allDevCount int64
		workedSum           float64
		workedCount         int64
	)

	for _, ev := range events {
		result.TotalsByStatus[ev.Status]++

		summary, ok := result.PerEmployee[ev.EmployeeID]
		if !ok {
			summary = dashboard.EmployeeSummary{
				EmployeeID: ev.EmployeeID,
				Counts:     dashboard.NewStatusCounts(),
			}
		}
		summary.Counts[ev.Status]++
		summary.Total++
		result.PerEmployee[ev.EmployeeID] = summary

		if ev.DeviationMinutes != nil {
			d, ok := perEmployeeDev[ev.EmployeeID]
			if !ok {
				d = &deviationSum{}
				perEmployeeDev[ev.EmployeeID] = d
			}
			d.sum += int64(*ev.DeviationMinutes)
			d.count++
			allDev += int64(*ev.DeviationMinutes)
			allDevCount++
		}

		if ev.WorkedMinutes != nil && !math.IsNaN(*ev.WorkedMinutes) && !math.IsInf(*ev.WorkedMinutes, 0) {
			workedSum += *ev.WorkedMinutes
			workedCount++
			summary.WorkedMinutes += *ev.WorkedMinutes
			result.PerEmployee[ev.EmployeeID] = summary
		}

		switch ev.Kind {
		case attendance.EventKindIn:
			result.KPIs.ClockIns++
		case attendance.EventKindOut:
			result.KPIs.ClockOuts++
		}
	}

	for id, d := range perEmployeeDev {
		summary := result.PerEmployee[id]
		avg := float64(d.sum) / float64(d.count)
		summary.AverageDeviationMinutes = &avg
		result.PerEmployee[id] = summary
	}

	result.KPIs.TotalEvents = int64(len(events))
	result.KPIs.NoSchedule = result.TotalsByStatus[attendance.StatusNoSchedule]
	if allDevCount > 0 {
		result.KPIs.AverageDeviationMinutes = roundOneDecimal(float64(allDev) / float64(allDevCount))
	}
	if workedCount > 0 {
		result.KPIs.AverageWorkedMinutes = roundOneDecimal(workedSum / float64(workedCount))
	}

	return result
}

// PlannedMinutes sums the shift length of every scheduled day in the inclusive
// date range. Days whose entry has a non-finite or non-positive duration add nothing.
func PlannedMinutes(ws schedule.WeeklySchedule, startDate, endDate string) (float64, error) {
	start, err := zoneclock.ParseDate(startDate)
	if err != nil {
		return 0, err
	}
	end, err := zoneclock.ParseDate(endDate)
	if err != nil {
		return 0, err
	}

	var total float64
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		entry, ok := ws.EntryFor(schedule.DayOfWeekFromWeekday(day.Weekday()))
		if !ok {
			continue
		}
		hours := entry.ShiftDurationHours
		if math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 {
			continue
		}
		total += hours * 60
	}
	return total, nil
}

// WorkedPercent is worked/planned*100 rounded to one decimal and capped at
// 100, or 0 without planned time.
func WorkedPercent(worked, planned float64) float64 {
	if planned <= 0 || worked <= 0 {
		return 0
	}
	return roundOneDecimal(math.Min(worked/planned*100, 100))
}

// SortByOccurredAt orders events by instant, oldest first unless descending.
// Events without an instant sort last either way. The sort is stable.
func SortByOccurredAt(events []attendance.ClassifiedEvent, descending bool) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].OccurredAt, events[j].OccurredAt
		switch {
		case a.IsZero() || b.IsZero():
			return !a.IsZero() && b.IsZero()
		case descending:
			return a.After(b)
		default:
			return a.Before(b)
		}
	})
}

// Percent returns part/total*100 rounded to one decimal, 0 when total is 0.
func Percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).
		Round(1).
		InexactFloat64()
}

func roundOneDecimal(x float64) float64 {
	return decimal.NewFromFloat(x).Round(1).InexactFloat64()
}
