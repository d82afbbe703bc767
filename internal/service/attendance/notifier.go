package attendance

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/ingestion"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/kafka"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/sse"
	dashboardService "github.com/cmlabs-hris/attendance-engine-go/internal/service/dashboard"
)

// StatusRecorder receives the per-status totals of each published snapshot.
type StatusRecorder interface {
	SetClassified(counts map[attendance.StatusLabel]int64)
}

// Broadcaster fans events out to stream subscribers.
type Broadcaster interface {
	Publish(topic string, event sse.Event)
}

// SnapshotEvent is the payload of the "snapshot" stream event.
type SnapshotEvent struct {
	Version        string           `json:"version"`
	LoadedAt       string           `json:"loaded_at"`
	StartDate      string           `json:"start_date"`
	EndDate        string           `json:"end_date"`
	TotalEvents    int64            `json:"total_events"`
	TotalsByStatus map[string]int64 `json:"totals_by_status"`
	FailedCount    int              `json:"failed_employees"`
}

// Notifier classifies each published snapshot once and hands the result to
// metrics, stream subscribers and the event publisher.
type Notifier struct {
	recorder    StatusRecorder
	broadcaster Broadcaster
	publisher   attendance.EventPublisher
}

func NewNotifier(recorder StatusRecorder, broadcaster Broadcaster, publisher attendance.EventPublisher) *Notifier {
	return &Notifier{
		recorder:    recorder,
		broadcaster: broadcaster,
		publisher:   publisher,
	}
}

// SnapshotPublished implements ingestion.SnapshotListener.
func (n *Notifier) SnapshotPublished(ctx context.Context, snap *ingestion.Snapshot) {
	events := ClassifySnapshot(snap)
	result := dashboardService.Aggregate(events)

	if n.recorder != nil {
		n.recorder.SetClassified(result.TotalsByStatus)
	}

	if n.broadcaster != nil {
		totals := make(map[string]int64, len(result.TotalsByStatus))
		for l, c := range result.TotalsByStatus {
			totals[string(l)] = c
		}
		n.broadcaster.Publish(sse.TopicAttendance, sse.Event{
			Event: "snapshot",
			Data: SnapshotEvent{
				Version:        snap.Version.String(),
				LoadedAt:       snap.LoadedAt.UTC().Format(time.RFC3339),
				StartDate:      snap.StartDate,
				EndDate:        snap.EndDate,
				TotalEvents:    result.KPIs.TotalEvents,
				TotalsByStatus: totals,
				FailedCount:    len(snap.Errors),
			},
		})
	}

	if n.publisher != nil {
		pubCtx := kafka.WithSnapshotVersion(ctx, snap.Version.String())
		if err := n.publisher.PublishClassified(pubCtx, events); err != nil {
			slog.Error("Failed to publish classified events", "version", snap.Version.String(), "error", err)
		}
	}
}
