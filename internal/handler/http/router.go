package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterConfig carries the cross-cutting settings of the HTTP stack.
type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// Metrics is optional; when nil no /metrics route is mounted.
	Metrics interface {
		Middleware(next http.Handler) http.Handler
		Handler() http.Handler
	}
}

func NewRouter(
	cfg RouterConfig,
	attendanceHandler AttendanceHandler,
	dashboardHandler DashboardHandler,
	employeeHandler EmployeeHandler,
	scheduleHandler ScheduleHandler,
) *chi.Mux {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	if cfg.Logger != nil {
		r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
			Level:  slog.LevelDebug,
			Schema: httplog.SchemaECS,
		}))
	}
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/employees", employeeHandler.List)

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/logs", attendanceHandler.ListLogs)
			r.Get("/logs/export", attendanceHandler.ExportLogs)
			r.Post("/refresh", attendanceHandler.Refresh)
			r.Get("/stream", attendanceHandler.Stream)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", dashboardHandler.GetSummary)
			r.Get("/employees/{employeeID}", dashboardHandler.GetEmployeeSummary)
		})

		r.Route("/schedules/{employeeID}", func(r chi.Router) {
			r.Get("/", scheduleHandler.Get)
			r.Put("/", scheduleHandler.Replace)
		})
	})
	return r
}
