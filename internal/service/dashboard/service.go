package dashboard

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/ingestion"
)

const recentLimit = 10

type DashboardServiceImpl struct {
	attendanceService attendance.AttendanceService
	snapshots         ingestion.SnapshotStore
}

func NewDashboardService(attendanceService attendance.AttendanceService, snapshots ingestion.SnapshotStore) dashboard.DashboardService {
	return &DashboardServiceImpl{
		attendanceService: attendanceService,
		snapshots:         snapshots,
	}
}

// GetSummary implements dashboard.DashboardService.
func (s *DashboardServiceImpl) GetSummary(ctx context.Context, filter attendance.LogFilter) (dashboard.SummaryResponse, error) {
	events, err := s.attendanceService.Classified(ctx, filter)
	if err != nil {
		return dashboard.SummaryResponse{}, err
	}
	snap, ok := s.snapshots.Load()
	if !ok {
		return dashboard.SummaryResponse{}, attendance.ErrSnapshotNotReady
	}

	result := Aggregate(events)

	employees := make([]dashboard.EmployeeSummaryItem, 0, len(snap.Employees))
	listed := make(map[string]bool, len(snap.Employees))
	for _, emp := range snap.Employees {
		if listed[emp.ID] || !employeeMatches(emp, filter) {
			continue
		}
		listed[emp.ID] = true
		employees = append(employees, newEmployeeSummaryItem(emp, result, plannedFor(snap, emp.ID), snap.Errors[emp.ID]))
	}
	for id := range result.PerEmployee {
		if !listed[id] {
			employees = append(employees, newEmployeeSummaryItem(employee.Employee{ID: id, Name: "Unknown"}, result, plannedFor(snap, id), snap.Errors[id]))
		}
	}
	sort.SliceStable(employees, func(i, j int) bool {
		a, b := strings.ToLower(employees[i].EmployeeName), strings.ToLower(employees[j].EmployeeName)
		if a != b {
			return a < b
		}
		return employees[i].EmployeeID < employees[j].EmployeeID
	})

	return dashboard.SummaryResponse{
		Snapshot:       newSnapshotMeta(snap),
		TotalsByStatus: statusCounts(result.TotalsByStatus, result.KPIs.TotalEvents),
		KPIs:           dashboard.NewKPIResponse(result.KPIs),
		Employees:      employees,
		Recent:         recent(events, recentLimit),
	}, nil
}

// GetEmployeeSummary implements dashboard.DashboardService.
func (s *DashboardServiceImpl) GetEmployeeSummary(ctx context.Context, employeeID string) (dashboard.EmployeeSummaryResponse, error) {
	if employeeID == "" {
		return dashboard.EmployeeSummaryResponse{}, employee.ErrEmployeeIDRequired
	}

	snap, ok := s.snapshots.Load()
	if !ok {
		return dashboard.EmployeeSummaryResponse{}, attendance.ErrSnapshotNotReady
	}
	emp, ok := snap.Employee(employeeID)
	if !ok {
		return dashboard.EmployeeSummaryResponse{}, employee.ErrEmployeeNotFound
	}

	events, err := s.attendanceService.Classified(ctx, attendance.LogFilter{EmployeeID: &employeeID})
	if err != nil {
		return dashboard.EmployeeSummaryResponse{}, err
	}

	result := Aggregate(events)

	logs := make([]attendance.ClassifiedEventResponse, 0, len(events))
	for _, ev := range events {
		logs = append(logs, attendance.NewClassifiedEventResponse(ev))
	}

	return dashboard.EmployeeSummaryResponse{
		Snapshot: newSnapshotMeta(snap),
		Summary:  newEmployeeSummaryItem(emp, result, plannedFor(snap, emp.ID), snap.Errors[emp.ID]),
		KPIs:     dashboard.NewKPIResponse(result.KPIs),
		Logs:     logs,
	}, nil
}

// employeeMatches applies the identity part of the filter so employees
// without events still appear when they match.
func employeeMatches(emp employee.Employee, filter attendance.LogFilter) bool {
	if filter.EmployeeID != nil && *filter.EmployeeID != "" && emp.ID != *filter.EmployeeID {
		return false
	}
	if filter.Query != nil {
		q := strings.ToLower(strings.TrimSpace(*filter.Query))
		if q != "" &&
			!strings.Contains(strings.ToLower(emp.DisplayName()), q) &&
			!strings.Contains(strings.ToLower(emp.Email), q) &&
			!strings.Contains(strings.ToLower(emp.ID), q) {
			return false
		}
	}
	return true
}

func newEmployeeSummaryItem(emp employee.Employee, result dashboard.AggregateResult, planned float64, fetchErr string) dashboard.EmployeeSummaryItem {
	summary, ok := result.PerEmployee[emp.ID]
	if !ok {
		summary = dashboard.EmployeeSummary{EmployeeID: emp.ID, Counts: dashboard.NewStatusCounts()}
	}

	var avg *float64
	if summary.AverageDeviationMinutes != nil {
		v := roundOneDecimal(*summary.AverageDeviationMinutes)
		avg = &v
	}

	return dashboard.EmployeeSummaryItem{
		EmployeeID:              emp.ID,
		EmployeeName:            emp.DisplayName(),
		EmployeeEmail:           emp.Email,
		Department:              emp.Department,
		Total:                   summary.Total,
		Counts:                  statusCounts(summary.Counts, summary.Total),
		AverageDeviationMinutes: avg,
		PlannedMinutes:          planned,
		WorkedMinutes:           roundOneDecimal(summary.WorkedMinutes),
		WorkedPercent:           WorkedPercent(summary.WorkedMinutes, planned),
		FetchError:              fetchErr,
	}
}

// plannedFor is 0 when the snapshot range cannot be parsed.
func plannedFor(snap *ingestion.Snapshot, employeeID string) float64 {
	planned, err := PlannedMinutes(snap.Schedules[employeeID], snap.StartDate, snap.EndDate)
	if err != nil {
		return 0
	}
	return planned
}

func statusCounts(counts map[attendance.StatusLabel]int64, total int64) []dashboard.StatusCount {
	out := make([]dashboard.StatusCount, 0, len(attendance.AllStatusLabels()))
	for _, l := range attendance.AllStatusLabels() {
		out = append(out, dashboard.StatusCount{
			Status:  string(l),
			Class:   l.BadgeClass(),
			Count:   counts[l],
			Percent: Percent(counts[l], total),
		})
	}
	return out
}

func recent(events []attendance.ClassifiedEvent, limit int) []attendance.ClassifiedEventResponse {
	sorted := make([]attendance.ClassifiedEvent, len(events))
	copy(sorted, events)
	SortByOccurredAt(sorted, true)

	out := make([]attendance.ClassifiedEventResponse, 0, min(limit, len(sorted)))
	for _, ev := range sorted[:min(limit, len(sorted))] {
		out = append(out, attendance.NewClassifiedEventResponse(ev))
	}
	return out
}

func newSnapshotMeta(snap *ingestion.Snapshot) dashboard.SnapshotMeta {
	return dashboard.SnapshotMeta{
		Version:   snap.Version.String(),
		LoadedAt:  snap.LoadedAt.UTC().Format(time.RFC3339),
		StartDate: snap.StartDate,
		EndDate:   snap.EndDate,
		Errors:    snap.Errors,
	}
}
