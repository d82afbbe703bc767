package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type clockEventRepositoryImpl struct {
	db *database.DB
}

func NewClockEventRepository(db *database.DB) attendance.ClockEventRepository {
	return &clockEventRepositoryImpl{db: db}
}

// ListByEmployeeAndRange implements attendance.ClockEventRepository. Events
// without a readable instant are always included so classification can
// report them.
func (r *clockEventRepositoryImpl) ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.ClockEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, occurred_at, worked_minutes, has_explicit_clock_out,
			kind, notes, device_timezone, schedule_timezone
		FROM clock_events
		WHERE employee_id = $1
		  AND (occurred_at IS NULL OR (occurred_at >= $2 AND occurred_at < $3))
		ORDER BY occurred_at NULLS LAST, id
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list clock events for employee %s: %w", employeeID, err)
	}
	defer rows.Close()

	events := make([]attendance.ClockEvent, 0)
	for rows.Next() {
		var (
			e          attendance.ClockEvent
			occurredAt *time.Time
			kind       string
		)
		err := rows.Scan(
			&e.ID, &e.EmployeeID, &occurredAt, &e.WorkedMinutes, &e.HasExplicitClockOut,
			&kind, &e.Notes, &e.DeviceTimezone, &e.ScheduleTimezone,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clock event: %w", err)
		}
		if occurredAt != nil {
			e.OccurredAt = occurredAt.UTC()
		}
		e.Kind = attendance.ParseEventKind(kind)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clock events: %w", err)
	}

	return events, nil
}

// UpsertMany implements attendance.ClockEventRepository.
func (r *clockEventRepositoryImpl) UpsertMany(ctx context.Context, events []attendance.ClockEvent) error {
	if len(events) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO clock_events (
			id, employee_id, occurred_at, worked_minutes, has_explicit_clock_out,
			kind, notes, device_timezone, schedule_timezone
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (employee_id, id) DO UPDATE SET
			occurred_at = EXCLUDED.occurred_at,
			worked_minutes = EXCLUDED.worked_minutes,
			has_explicit_clock_out = EXCLUDED.has_explicit_clock_out,
			kind = EXCLUDED.kind,
			notes = EXCLUDED.notes,
			device_timezone = EXCLUDED.device_timezone,
			schedule_timezone = EXCLUDED.schedule_timezone,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, e := range events {
		var occurredAt *time.Time
		if !e.OccurredAt.IsZero() {
			t := e.OccurredAt.UTC()
			occurredAt = &t
		}
		var worked any
		if e.WorkedMinutes != nil {
			worked = nullableFloat(*e.WorkedMinutes)
		}
		batch.Queue(query,
			e.ID, e.EmployeeID, occurredAt, worked, e.HasExplicitClockOut,
			string(e.Kind), e.Notes, e.DeviceTimezone, e.ScheduleTimezone,
		)
	}

	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert %d clock events: %w", len(events), err)
	}
	return nil
}
