package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/ingestion"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
)

// Recorder receives refresh telemetry.
type Recorder interface {
	ObserveRefresh(took time.Duration, err error)
	IncFetchError(kind string)
	SetSnapshotLoadedAt(t time.Time)
}

type Config struct {
	DefaultRangeDays int
	Concurrency      int
}

type IngestionServiceImpl struct {
	source    ingestion.Source
	sink      ingestion.Sink
	store     ingestion.SnapshotStore
	recorder  Recorder
	listeners []ingestion.SnapshotListener
	cfg       Config
	now       func() time.Time

	running atomic.Bool
}

// Refresh implements ingestion.IngestionService.
func (s *IngestionServiceImpl) Refresh(ctx context.Context, req ingestion.RefreshRequest) (ingestion.RefreshResponse, error) {
	if err := req.Validate(); err != nil {
		return ingestion.RefreshResponse{}, err
	}

	if !s.running.CompareAndSwap(false, true) {
		return ingestion.RefreshResponse{}, ingestion.ErrRefreshInProgress
	}
	defer s.running.Store(false)

	start := s.now()
	startDate, endDate, err := req.Resolve(start, s.cfg.DefaultRangeDays)
	if err != nil {
		return ingestion.RefreshResponse{}, err
	}

	snap, err := s.load(ctx, startDate, endDate)
	took := s.now().Sub(start)
	if s.recorder != nil {
		s.recorder.ObserveRefresh(took, err)
	}
	if err != nil {
		slog.Error("Refresh failed", "start_date", startDate, "end_date", endDate, "error", err)
		return ingestion.RefreshResponse{}, err
	}

	s.store.Store(snap)
	if s.recorder != nil {
		s.recorder.SetSnapshotLoadedAt(snap.LoadedAt)
	}

	slog.Info("Snapshot published",
		"version", snap.Version.String(),
		"start_date", startDate,
		"end_date", endDate,
		"employees", len(snap.Employees),
		"events", snap.EventCount(),
		"failed_employees", len(snap.Errors),
		"duration", took,
	)

	for _, l := range s.listeners {
		l.SnapshotPublished(ctx, snap)
	}

	return ingestion.NewRefreshResponse(snap, took), nil
}

func (s *IngestionServiceImpl) load(ctx context.Context, startDate, endDate string) (*ingestion.Snapshot, error) {
	employees, err := s.source.ListEmployees(ctx)
	if err != nil {
		if s.recorder != nil {
			s.recorder.IncFetchError("employees")
		}
		return nil, fmt.Errorf("%w: %w", ingestion.ErrListEmployees, err)
	}

	version, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate snapshot version: %w", err)
	}

	snap := &ingestion.Snapshot{
		Version:   version,
		StartDate: startDate,
		EndDate:   endDate,
		Employees: employees,
		Schedules: make(map[string]schedule.WeeklySchedule, len(employees)),
		Events:    make(map[string][]attendance.ClockEvent, len(employees)),
		Errors:    make(map[string]string),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.Concurrency, 1))

	for _, emp := range employees {
		g.Go(func() error {
			ws, events, fetchErr := s.fetchEmployee(gctx, emp, startDate, endDate)

			mu.Lock()
			defer mu.Unlock()
			snap.Schedules[emp.ID] = ws
			snap.Events[emp.ID] = events
			if fetchErr != nil {
				snap.Errors[emp.ID] = fetchErr.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("refresh cancelled: %w", err)
	}

	if s.sink != nil {
		s.persist(ctx, snap)
	}

	snap.LoadedAt = s.now().UTC()
	return snap, nil
}

// fetchEmployee never aborts the refresh: a failed schedule becomes an empty
// schedule and failed logs an empty list, with the errors joined.
func (s *IngestionServiceImpl) fetchEmployee(ctx context.Context, emp employee.Employee, startDate, endDate string) (schedule.WeeklySchedule, []attendance.ClockEvent, error) {
	var errs []error

	ws, err := s.source.GetSchedule(ctx, emp.ID)
	if err != nil {
		if s.recorder != nil {
			s.recorder.IncFetchError("schedule")
		}
		slog.Warn("Failed to fetch schedule", "employee_id", emp.ID, "error", err)
		errs = append(errs, fmt.Errorf("schedule: %w", err))
		ws = schedule.WeeklySchedule{}
	}

	events, err := s.source.GetClockEvents(ctx, emp.ID, startDate, endDate)
	if err != nil {
		if s.recorder != nil {
			s.recorder.IncFetchError("logs")
		}
		slog.Warn("Failed to fetch attendance logs", "employee_id", emp.ID, "error", err)
		errs = append(errs, fmt.Errorf("logs: %w", err))
		events = []attendance.ClockEvent{}
	}

	return ws, events, errors.Join(errs...)
}

// persist writes the fetched data through to the sink. Failures are logged
// and do not block publishing the snapshot.
func (s *IngestionServiceImpl) persist(ctx context.Context, snap *ingestion.Snapshot) {
	if err := s.sink.SaveEmployees(ctx, snap.Employees); err != nil {
		slog.Warn("Failed to persist employees", "error", err)
		if s.recorder != nil {
			s.recorder.IncFetchError("store")
		}
		return
	}

	for _, emp := range snap.Employees {
		if _, failed := snap.Errors[emp.ID]; failed {
			continue
		}
		if err := s.sink.SaveSchedule(ctx, emp.ID, snap.Schedules[emp.ID]); err != nil {
			slog.Warn("Failed to persist schedule", "employee_id", emp.ID, "error", err)
			if s.recorder != nil {
				s.recorder.IncFetchError("store")
			}
		}
		if err := s.sink.SaveClockEvents(ctx, snap.Events[emp.ID]); err != nil {
			slog.Warn("Failed to persist attendance logs", "employee_id", emp.ID, "error", err)
			if s.recorder != nil {
				s.recorder.IncFetchError("store")
			}
		}
	}
}

// NewIngestionService wires the service. sink and recorder may be nil.
func NewIngestionService(
	source ingestion.Source,
	sink ingestion.Sink,
	store ingestion.SnapshotStore,
	recorder Recorder,
	cfg Config,
	listeners ...ingestion.SnapshotListener,
) *IngestionServiceImpl {
	if cfg.DefaultRangeDays == 0 {
		cfg.DefaultRangeDays = ingestion.DefaultRangeDays
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &IngestionServiceImpl{
		source:    source,
		sink:      sink,
		store:     store,
		recorder:  recorder,
		listeners: listeners,
		cfg:       cfg,
		now:       time.Now,
	}
}

// AddListener registers a listener for snapshots published after the call.
func (s *IngestionServiceImpl) AddListener(l ingestion.SnapshotListener) {
	s.listeners = append(s.listeners, l)
}
