package tasks

import (
	"fmt"

	"github.com/desertthunder/marquee/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Phase identifies a stage of a task.
type Phase int

const (
	FetchUsers Phase = iota
	FetchTickets
	WriteReport
)

func (p Phase) String() string {
	switch p {
	case FetchUsers:
		return "fetch_users"
	case FetchTickets:
		return "fetch_tickets"
	case WriteReport:
		return "write_report"
	default:
		return ""
	}
}

func fetchingUsersUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: FetchUsers, Step: 0, Total: 1, Message: "Fetching users..."}
}

func foundUsersUpdate(count int) ProgressUpdate {
	return ProgressUpdate{Phase: FetchUsers, Step: 1, Total: 1, Message: fmt.Sprintf("Found %d users", count)}
}

func ticketsFetchedUpdate(step, total int, r UserReport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTickets,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d tickets)", step, total, r.User.Username, r.Count),
		Data:    r,
	}
}

func ticketsFailedUpdate(step, total int, u models.User, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTickets,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, u.Username, err),
	}
}

func writingReportUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteReport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Writing %s", step, total, path),
	}
}
