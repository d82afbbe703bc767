package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/cmlabs-hris/attendance-engine-go/internal/config"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/ingestion"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
	appHTTP "github.com/cmlabs-hris/attendance-engine-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/hyacinth"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/kafka"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-engine-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-engine-go/internal/service/attendance"
	dashboardService "github.com/cmlabs-hris/attendance-engine-go/internal/service/dashboard"
	employeeService "github.com/cmlabs-hris/attendance-engine-go/internal/service/employee"
	ingestionService "github.com/cmlabs-hris/attendance-engine-go/internal/service/ingestion"
	scheduleService "github.com/cmlabs-hris/attendance-engine-go/internal/service/schedule"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-engine"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage (optional)
	var (
		employeeRepo   employee.EmployeeRepository
		scheduleRepo   schedule.ScheduleRepository
		clockEventRepo attendance.ClockEventRepository
	)
	if cfg.Database.Enabled {
		dsn := cfg.DatabaseURL()
		if err := database.RunMigrations(dsn); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		db, err := database.NewPostgreSQLDB(ctx, dsn)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		employeeRepo = postgresql.NewEmployeeRepository(db)
		scheduleRepo = postgresql.NewScheduleRepository(db)
		clockEventRepo = postgresql.NewClockEventRepository(db)
	}

	// Refresh source and write-through sink
	var (
		source ingestion.Source
		sink   ingestion.Sink
	)
	switch cfg.Ingestion.DataSource {
	case config.DataSourceDatabase:
		source = postgresql.NewStoreSource(employeeRepo, scheduleRepo, clockEventRepo)
	default:
		client := hyacinth.NewClient(cfg.Hyacinth.BaseURL, cfg.Hyacinth.APIKey, cfg.Hyacinth.ClientTimeout)
		source = hyacinth.NewSource(client, cfg.Hyacinth.DepartmentID)
		if cfg.Database.Enabled {
			sink = postgresql.NewStore(employeeRepo, scheduleRepo, clockEventRepo)
		}
	}
	slog.Info("Attendance source configured", "data_source", cfg.Ingestion.DataSource, "write_through", sink != nil)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.NewMetrics(registry)

	// Event publisher
	var publisher attendance.EventPublisher = kafka.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		slog.Info("Kafka publisher enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Error("Failed to close publisher", "error", err)
		}
	}()

	// Services
	hub := sse.NewHub()
	snapshots := ingestionService.NewSnapshotStore()

	attendanceSvc := attendanceService.NewAttendanceService(snapshots)
	notifier := attendanceService.NewNotifier(appMetrics, hub, publisher)
	ingestionSvc := ingestionService.NewIngestionService(
		source,
		sink,
		snapshots,
		appMetrics,
		ingestionService.Config{
			DefaultRangeDays: cfg.Ingestion.RefreshRangeDays,
			Concurrency:      cfg.Ingestion.FetchConcurrency,
		},
		notifier,
	)
	dashboardSvc := dashboardService.NewDashboardService(attendanceSvc, snapshots)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, snapshots)
	scheduleSvc := scheduleService.NewScheduleService(scheduleRepo, employeeRepo, snapshots)

	// Background refresh
	scheduler := cron.NewScheduler(ctx)
	cron.NewAttendanceJobs(ingestionSvc, cfg.Ingestion.RefreshInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         logger,
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
			Metrics:        appMetrics,
		},
		appHTTP.NewAttendanceHandler(attendanceSvc, ingestionSvc, snapshots, hub),
		appHTTP.NewDashboardHandler(dashboardSvc),
		appHTTP.NewEmployeeHandler(employeeSvc),
		appHTTP.NewScheduleHandler(scheduleSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Open event streams end when the process is signalled.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		slog.Info("Server running", "addr", "http://localhost"+server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
