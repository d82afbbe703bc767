package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/ingestion"
	"github.com/cmlabs-hris/attendance-engine-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/sse"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AttendanceHandler interface {
	ListLogs(w http.ResponseWriter, r *http.Request)
	ExportLogs(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	ingestionService  ingestion.IngestionService
	snapshots         ingestion.SnapshotStore
	hub               *sse.Hub
	keepalive         time.Duration
}

func NewAttendanceHandler(
	attendanceService attendance.AttendanceService,
	ingestionService ingestion.IngestionService,
	snapshots ingestion.SnapshotStore,
	hub *sse.Hub,
) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		ingestionService:  ingestionService,
		snapshots:         snapshots,
		hub:               hub,
		keepalive:         30 * time.Second,
	}
}

// parseLogFilter reads the shared log query parameters. Non-numeric page and
// limit values fall back to the defaults.
func parseLogFilter(r *http.Request) attendance.LogFilter {
	query := r.URL.Query()
	filter := attendance.LogFilter{}

	if q := query.Get("q"); q != "" {
		filter.Query = &q
	}
	if employeeID := query.Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}
	if startDate := query.Get("start_date"); startDate != "" {
		filter.StartDate = &startDate
	}
	if endDate := query.Get("end_date"); endDate != "" {
		filter.EndDate = &endDate
	}

	// Pagination
	if p := query.Get("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil {
			filter.Page = pageNum
		}
	}
	if l := query.Get("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil {
			filter.Limit = limitNum
		}
	}

	// Sorting
	filter.SortOrder = query.Get("sort_order")

	return filter
}

// ListLogs handles GET /attendance/logs
func (h *attendanceHandlerImpl) ListLogs(w http.ResponseWriter, r *http.Request) {
	filter := parseLogFilter(r)

	result, err := h.attendanceService.ListLogs(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// ExportLogs handles GET /attendance/logs/export
func (h *attendanceHandlerImpl) ExportLogs(w http.ResponseWriter, r *http.Request) {
	filter := parseLogFilter(r)

	buf, filename, err := h.attendanceService.ExportLogs(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, xlsxContentType, filename, buf.Bytes())
}

// Refresh handles POST /attendance/refresh. An empty body refreshes the
// default range.
func (h *attendanceHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	var req ingestion.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("Failed to decode refresh request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.ingestionService.Refresh(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance data refreshed", result)
}

// Stream handles GET /attendance/stream
func (h *attendanceHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(sse.TopicAttendance)
	defer cleanup()

	connected := map[string]string{"status": "connected"}
	if snap, ok := h.snapshots.Load(); ok {
		connected["snapshot_version"] = snap.Version.String()
	}
	writeSSE(w, "connected", connected)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			writeSSE(w, event.Event, event.Data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func writeSSE(w io.Writer, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		slog.Warn("Failed to encode SSE payload", "event", event, "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}
