package attendance

import (
	"sort"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/ingestion"
)

const unknownEmployeeName = "Unknown"

// ClassifySnapshot classifies every event of the snapshot against the
// schedule of its employee and joins the employee's name and email.
func ClassifySnapshot(snap *ingestion.Snapshot) []attendance.ClassifiedEvent {
	if snap == nil {
		return nil
	}

	out := make([]attendance.ClassifiedEvent, 0, snap.EventCount())
	seen := make(map[string]bool, len(snap.Employees))

	for _, emp := range snap.Employees {
		if seen[emp.ID] {
			continue
		}
		seen[emp.ID] = true

		for _, ev := range ClassifyAll(snap.Events[emp.ID], snap.ScheduleFor(emp.ID)) {
			ev.EmployeeName = emp.DisplayName()
			ev.EmployeeEmail = emp.Email
			out = append(out, ev)
		}
	}

	// Events of ids missing from the employee list, in a stable order.
	var orphans []string
	for id := range snap.Events {
		if !seen[id] {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	for _, id := range orphans {
		for _, ev := range ClassifyAll(snap.Events[id], snap.ScheduleFor(id)) {
			ev.EmployeeName = unknownEmployeeName
			out = append(out, ev)
		}
	}

	return out
}
