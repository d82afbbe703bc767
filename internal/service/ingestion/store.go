package ingestion

import (
	"sync/atomic"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/ingestion"
)

// SnapshotStoreImpl publishes snapshots with a single atomic pointer swap so
// readers never observe a half-built refresh.
type SnapshotStoreImpl struct {
	current atomic.Pointer[ingestion.Snapshot]
}

func NewSnapshotStore() *SnapshotStoreImpl {
	return &SnapshotStoreImpl{}
}

// Load implements ingestion.SnapshotStore.
func (s *SnapshotStoreImpl) Load() (*ingestion.Snapshot, bool) {
	snap := s.current.Load()
	return snap, snap != nil
}

// Store implements ingestion.SnapshotStore.
func (s *SnapshotStoreImpl) Store(snap *ingestion.Snapshot) {
	s.current.Store(snap)
}
