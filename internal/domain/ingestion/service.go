package ingestion

import "context"

type IngestionService interface {
	// Refresh loads a new snapshot and publishes it. Per-employee failures are
	// recorded in the snapshot; only a failure to list employees aborts.
	Refresh(ctx context.Context, req RefreshRequest) (RefreshResponse, error)
}
