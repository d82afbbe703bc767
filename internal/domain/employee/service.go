package employee

import "context"

type EmployeeService interface {
	// ListEmployees reads the employees of the latest snapshot.
	ListEmployees(ctx context.Context) ([]EmployeeResponse, error)
}
