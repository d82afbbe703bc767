package attendance

import (
	"context"
	"time"
)

// ClockEventRepository stores raw clock events keyed by (employee_id, id).
type ClockEventRepository interface {
	// ListByEmployeeAndRange returns events whose instant falls in [from, to),
	// oldest first. Events stored without an instant are included.
	ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]ClockEvent, error)

	// UpsertMany inserts or replaces the given events.
	UpsertMany(ctx context.Context, events []ClockEvent) error
}
