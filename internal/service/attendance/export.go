package attendance

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
)

const exportSheet = "Attendance"

var exportHeaders = []string{
	"Employee ID", "Name", "Email", "Type", "Status", "Timestamp (UTC)",
	"Deviation (min)", "Worked", "Schedule Day", "Schedule Start", "Schedule TZ", "Notes",
}

// ExportLogs implements attendance.AttendanceService.
// Rows follow the filter's sort order; pagination is ignored.
func (s *AttendanceServiceImpl) ExportLogs(ctx context.Context, filter attendance.LogFilter) (*bytes.Buffer, string, error) {
	events, err := s.Classified(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	if len(events) == 0 {
		return nil, "", attendance.ErrNothingToExport
	}

	snap, _ := s.snapshots.Load()

	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(exportSheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(exportSheet, "A", "A", 16)
	f.SetColWidth(exportSheet, "B", "C", 26)
	f.SetColWidth(exportSheet, "D", "E", 13)
	f.SetColWidth(exportSheet, "F", "F", 22)
	f.SetColWidth(exportSheet, "G", "K", 15)
	f.SetColWidth(exportSheet, "L", "L", 40)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range exportHeaders {
		c, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, c, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	f.SetCellStyle(exportSheet, "A1", last, headerStyle)

	for i, ev := range events {
		row := i + 2
		values := []any{
			ev.EmployeeID,
			ev.EmployeeName,
			ev.EmployeeEmail,
			string(ev.Kind),
			string(ev.Status),
			"-",
			"-",
			attendance.FormatWorkedMinutes(ev.WorkedMinutes),
			"-",
			"-",
			"-",
			ev.Notes,
		}
		if !ev.OccurredAt.IsZero() {
			values[5] = ev.OccurredAt.UTC().Format(time.DateTime)
		}
		if ev.DeviationMinutes != nil {
			values[6] = *ev.DeviationMinutes
		}
		if m := ev.MatchedSchedule; m != nil {
			values[8] = m.DayOfWeek.String()
			values[9] = m.StartTime
			values[10] = m.Timezone
		}

		c, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(exportSheet, c, &values); err != nil {
			slog.Error("Failed to write export row", "row", row, "error", err)
			return nil, "", attendance.ErrExportGenerateFail
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		slog.Error("Failed to write excel file", "error", err)
		return nil, "", attendance.ErrExportGenerateFail
	}

	filename := fmt.Sprintf("attendance_%s_%s.xlsx", snap.StartDate, snap.EndDate)
	return buf, filename, nil
}
