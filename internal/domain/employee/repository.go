package employee

import "context"

type EmployeeRepository interface {
	// List returns every employee ordered by name.
	List(ctx context.Context) ([]Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	// UpsertMany inserts new employees and refreshes the identity fields of known ones.
	UpsertMany(ctx context.Context, employees []Employee) error
}
