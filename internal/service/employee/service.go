package employee

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/ingestion"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	snapshots    ingestion.SnapshotStore
}

// ListEmployees implements employee.EmployeeService.
// The snapshot is authoritative once loaded; before the first refresh the
// repository is read when one is configured.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context) ([]employee.EmployeeResponse, error) {
	var employees []employee.Employee

	if snap, ok := s.snapshots.Load(); ok {
		employees = snap.Employees
	} else if s.employeeRepo != nil {
		list, err := s.employeeRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list employees: %w", err)
		}
		employees = list
	} else {
		return nil, attendance.ErrSnapshotNotReady
	}

	out := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, employee.NewEmployeeResponse(e))
	}
	return out, nil
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository, snapshots ingestion.SnapshotStore) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		snapshots:    snapshots,
	}
}
