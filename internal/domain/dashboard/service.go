package dashboard

import (
	"context"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
)

type DashboardService interface {
	// GetSummary aggregates every classified event that matches the filter.
	// Pagination fields of the filter are ignored.
	GetSummary(ctx context.Context, filter attendance.LogFilter) (SummaryResponse, error)

	// GetEmployeeSummary returns employee.ErrEmployeeNotFound for ids absent
	// from the current snapshot.
	GetEmployeeSummary(ctx context.Context, employeeID string) (EmployeeSummaryResponse, error)
}
