package tasks

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/models"
)

// TicketSource is the part of the cinema API the ticket report needs.
// An admin-authorized services.Cinema satisfies it.
type TicketSource interface {
	Users(ctx context.Context, q models.UserQuery) ([]models.User, error)
	UserTickets(ctx context.Context, userID string) ([]models.Ticket, error)
}

// UserReport is one user's line in the ticket report.
type UserReport struct {
	User    models.User
	Tickets []models.Ticket
	Count   int
	Revenue float64
	File    string // export written for this user, if any
	Error   error
}

// Failed reports whether the user's tickets could not be fetched or written.
func (r UserReport) Failed() bool { return r.Error != nil }

// TicketReport is the result of [ReportEngine.Run].
type TicketReport struct {
	Users        []UserReport // sorted by username
	TotalUsers   int
	Succeeded    int
	Failed       int
	TotalTickets int
	TotalRevenue float64
	OutputDir    string
	ManifestPath string
}

// Failures returns the users whose tickets could not be fetched.
func (r *TicketReport) Failures() []UserReport {
	var failed []UserReport
	for _, u := range r.Users {
		if u.Failed() {
			failed = append(failed, u)
		}
	}
	return failed
}

// ReportEngine runs the admin ticket report.
type ReportEngine struct {
	source TicketSource
	logger *log.Logger
}

// NewReportEngine creates a ReportEngine reading from source. A nil logger discards output.
func NewReportEngine(source TicketSource, logger *log.Logger) *ReportEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ReportEngine{source: source, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *ReportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
