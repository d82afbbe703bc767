package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type scheduleRepositoryImpl struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) schedule.ScheduleRepository {
	return &scheduleRepositoryImpl{db: db}
}

// GetByEmployeeID implements schedule.ScheduleRepository.
func (r *scheduleRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) (schedule.WeeklySchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT day_of_week, timezone, start_time, shift_duration_hours
		FROM schedule_entries
		WHERE employee_id = $1
		ORDER BY day_of_week
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule for employee %s: %w", employeeID, err)
	}
	defer rows.Close()

	ws := make(schedule.WeeklySchedule, 0, 7)
	for rows.Next() {
		var (
			day      int16
			entry    schedule.ScheduleEntry
			duration sql.NullFloat64
		)
		if err := rows.Scan(&day, &entry.Timezone, &entry.StartTime, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		entry.DayOfWeek = schedule.DayOfWeek(day)
		entry.ShiftDurationHours = math.NaN()
		if duration.Valid {
			entry.ShiftDurationHours = duration.Float64
		}
		ws = append(ws, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedule entries: %w", err)
	}

	return ws, nil
}

// ReplaceForEmployee implements schedule.ScheduleRepository.
func (r *scheduleRepositoryImpl) ReplaceForEmployee(ctx context.Context, employeeID string, ws schedule.WeeklySchedule) error {
	return WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)

		if _, err := q.Exec(txCtx, `DELETE FROM schedule_entries WHERE employee_id = $1`, employeeID); err != nil {
			return fmt.Errorf("failed to clear schedule for employee %s: %w", employeeID, err)
		}
		if len(ws) == 0 {
			return nil
		}

		query := `
			INSERT INTO schedule_entries (employee_id, day_of_week, timezone, start_time, shift_duration_hours)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (employee_id, day_of_week) DO NOTHING
		`

		batch := &pgx.Batch{}
		for _, e := range ws {
			batch.Queue(query, employeeID, int16(e.DayOfWeek), e.Timezone, e.StartTime, nullableFloat(e.ShiftDurationHours))
		}
		if err := q.SendBatch(txCtx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert schedule for employee %s: %w", employeeID, err)
		}
		return nil
	})
}

func nullableFloat(f float64) sql.NullFloat64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}
