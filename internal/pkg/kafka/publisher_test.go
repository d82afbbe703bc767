package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
)

type recordingWriter struct {
	batches [][]kafka.Message
	err     error
	closed  bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	batch := make([]kafka.Message, len(msgs))
	copy(batch, msgs)
	w.batches = append(w.batches, batch)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func sampleEvents(n int) []attendance.ClassifiedEvent {
	out := make([]attendance.ClassifiedEvent, 0, n)
	for i := 0; i < n; i++ {
		dev := i
		out = append(out, attendance.ClassifiedEvent{
			ClockEvent: attendance.ClockEvent{
				ID:         "log-" + string(rune('a'+i)),
				EmployeeID: "emp-1",
				OccurredAt: time.Date(2024, 1, 15, 9, i, 0, 0, time.UTC),
				Kind:       attendance.EventKindIn,
			},
			Status:           attendance.StatusOnTime,
			DeviationMinutes: &dev,
		})
	}
	return out
}

func TestPublisher_PublishClassified(t *testing.T) {
	w := &recordingWriter{}
	p := &Publisher{writer: w, topic: DefaultTopic, batchSize: 2}

	ctx := WithSnapshotVersion(context.Background(), "0190b6a8-0000-7000-8000-000000000000")
	require.NoError(t, p.PublishClassified(ctx, sampleEvents(3)))

	require.Len(t, w.batches, 2)
	assert.Len(t, w.batches[0], 2)
	assert.Len(t, w.batches[1], 1)

	msg := w.batches[0][0]
	assert.Equal(t, "emp-1", string(msg.Key))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "On Time", decoded["status"])
	assert.Equal(t, "in", decoded["type"])
	assert.Equal(t, "2024-01-15T09:00:00Z", decoded["timestamp"])
	assert.Equal(t, "0190b6a8-0000-7000-8000-000000000000", decoded["snapshot_version"])
}

func TestPublisher_Empty(t *testing.T) {
	w := &recordingWriter{}
	p := &Publisher{writer: w, topic: DefaultTopic, batchSize: 10}
	require.NoError(t, p.PublishClassified(context.Background(), nil))
	assert.Empty(t, w.batches)
}

func TestPublisher_WriteError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker unavailable")}
	p := &Publisher{writer: w, topic: DefaultTopic, batchSize: 10}

	err := p.PublishClassified(context.Background(), sampleEvents(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNoopPublisher(t *testing.T) {
	var p attendance.EventPublisher = NoopPublisher{}
	assert.NoError(t, p.PublishClassified(context.Background(), sampleEvents(2)))
	assert.NoError(t, p.Close())
}
