package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
)

const DefaultTopic = "attendance.classified"

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes classified events to a topic, keyed by employee id so
// one employee's events stay on one partition.
type Publisher struct {
	writer    messageWriter
	topic     string
	batchSize int
}

func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
		topic:     topic,
		batchSize: 500,
	}
}

// ClassifiedMessage is the JSON value of each record.
type ClassifiedMessage struct {
	attendance.ClassifiedEventResponse
	SnapshotVersion string `json:"snapshot_version,omitempty"`
	PublishedAt     string `json:"published_at"`
}

// PublishClassified implements attendance.EventPublisher.
func (p *Publisher) PublishClassified(ctx context.Context, events []attendance.ClassifiedEvent) error {
	if len(events) == 0 {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	version, _ := ctx.Value(snapshotVersionKey{}).(string)

	msgs := make([]kafka.Message, 0, min(len(events), p.batchSize))
	flush := func() error {
		if len(msgs) == 0 {
			return nil
		}
		if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("failed to write %d messages to %s: %w", len(msgs), p.topic, err)
		}
		msgs = msgs[:0]
		return nil
	}

	for _, ev := range events {
		value, err := json.Marshal(ClassifiedMessage{
			ClassifiedEventResponse: attendance.NewClassifiedEventResponse(ev),
			SnapshotVersion:         version,
			PublishedAt:             now,
		})
		if err != nil {
			return fmt.Errorf("failed to encode event %s: %w", ev.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(ev.EmployeeID),
			Value: value,
		})
		if len(msgs) >= p.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	slog.Debug("Published classified events", "topic", p.topic, "count", len(events))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

type snapshotVersionKey struct{}

// WithSnapshotVersion tags published messages with the snapshot they came from.
func WithSnapshotVersion(ctx context.Context, version string) context.Context {
	return context.WithValue(ctx, snapshotVersionKey{}, version)
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishClassified(ctx context.Context, events []attendance.ClassifiedEvent) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
