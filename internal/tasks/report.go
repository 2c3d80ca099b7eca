package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"golang.org/x/time/rate"
)

// ReportOpts configures [ReportEngine.Run].
type ReportOpts struct {
	Query      models.UserQuery // narrows the user listing
	Usernames  []string         // when set, only these users are reported
	NumWorkers int              // concurrent fetches (default 4, max 10)
	RateLimit  float64          // requests per second (default 5)
	Format     formatter.Format // per-user export format (default txt)
	OutputDir  string           // when set, exports and report.json are written here
}

type reportJob struct {
	user models.User
}

// Run fetches every selected user's tickets and totals them.
//
// Per-user failures are kept in the report; Run only fails when users cannot be listed,
// the context ends or the manifest cannot be written.
func (e *ReportEngine) Run(ctx context.Context, prog chan<- ProgressUpdate, opts ReportOpts) (*TicketReport, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: cinema API not initialized", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatText
	}

	e.sendProgress(prog, fetchingUsersUpdate())
	users, err := e.source.Users(ctx, opts.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	report := &TicketReport{OutputDir: opts.OutputDir}
	users, missing := selectUsers(users, opts.Usernames)
	for _, name := range missing {
		report.Users = append(report.Users, UserReport{
			User:  models.User{Username: name},
			Error: fmt.Errorf("%w: no user named %q", shared.ErrNotFound, name),
		})
	}
	e.sendProgress(prog, foundUsersUpdate(len(users)))
	e.logger.Debug("ticket report", "users", len(users), "missing", len(missing), "workers", opts.NumWorkers)

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan reportJob, len(users))
	results := make(chan UserReport, len(users))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.reportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for _, u := range users {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			jobs <- reportJob{user: u}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		report.Users = append(report.Users, res)
		if res.Failed() {
			e.sendProgress(prog, ticketsFailedUpdate(completed, len(users), res.User, res.Error))
		} else {
			e.sendProgress(prog, ticketsFetchedUpdate(completed, len(users), res))
		}
	}

	report.summarize()

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("report interrupted after %d of %d users: %w", completed, len(users), err)
	}

	if opts.OutputDir != "" {
		path := filepath.Join(opts.OutputDir, "report.json")
		e.sendProgress(prog, writingReportUpdate(1, 1, path))
		if err := writeManifest(report, path); err != nil {
			return report, fmt.Errorf("report completed but failed to write manifest: %w", err)
		}
		report.ManifestPath = path
	}

	return report, nil
}

// reportWorker fetches (and optionally exports) tickets for users from the jobs channel.
func (e *ReportEngine) reportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan reportJob,
	results chan<- UserReport,
	opts ReportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		results <- e.reportUser(ctx, job.user, opts)
	}
}

func (e *ReportEngine) reportUser(ctx context.Context, u models.User, opts ReportOpts) UserReport {
	res := UserReport{User: u}

	tickets, err := e.source.UserTickets(ctx, u.ID)
	if err != nil {
		res.Error = fmt.Errorf("failed to fetch tickets: %w", err)
		return res
	}
	res.Tickets = tickets
	res.Count = len(tickets)
	res.Revenue = models.TicketsTotal(tickets)

	if opts.OutputDir == "" {
		return res
	}

	export := formatter.TicketExport{Title: u.Username + "'s tickets", Tickets: tickets}
	data, err := formatter.Tickets(export, opts.Format)
	if err != nil {
		res.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return res
	}

	path := filepath.Join(opts.OutputDir, formatter.DefaultFilename(safeName(u.Username)+"_tickets", opts.Format))
	if err := formatter.WriteFile(path, data); err != nil {
		res.Error = err
		return res
	}
	res.File = path
	return res
}

func (r *TicketReport) summarize() {
	slices.SortFunc(r.Users, func(a, b UserReport) int {
		return strings.Compare(strings.ToLower(a.User.Username), strings.ToLower(b.User.Username))
	})

	r.TotalUsers = len(r.Users)
	r.Succeeded, r.Failed, r.TotalTickets, r.TotalRevenue = 0, 0, 0, 0
	for _, u := range r.Users {
		if u.Failed() {
			r.Failed++
			continue
		}
		r.Succeeded++
		r.TotalTickets += u.Count
		r.TotalRevenue += u.Revenue
	}
}

// selectUsers keeps the users named in usernames (case-insensitive), reporting names with no match.
// An empty usernames keeps everyone.
func selectUsers(users []models.User, usernames []string) (selected []models.User, missing []string) {
	if len(usernames) == 0 {
		return users, nil
	}

	byName := make(map[string]models.User, len(users))
	for _, u := range users {
		byName[strings.ToLower(u.Username)] = u
	}

	seen := make(map[string]bool)
	for _, name := range usernames {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if u, ok := byName[key]; ok {
			selected = append(selected, u)
		} else {
			missing = append(missing, strings.TrimSpace(name))
		}
	}
	return selected, missing
}

// safeName keeps letters, digits, '-' and '_' so usernames can be used as file names.
func safeName(s string) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, s)
	if name == "" {
		return "user"
	}
	return name
}

// ManifestUser is one user's entry in [Manifest].
type ManifestUser struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Tickets  int     `json:"tickets"`
	Revenue  float64 `json:"revenue"`
	File     string  `json:"file,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// Manifest is the JSON form of a [TicketReport], written as report.json.
type Manifest struct {
	TotalUsers   int            `json:"total_users"`
	Succeeded    int            `json:"succeeded"`
	Failed       int            `json:"failed"`
	TotalTickets int            `json:"total_tickets"`
	TotalRevenue float64        `json:"total_revenue"`
	Users        []ManifestUser `json:"users"`
}

// Manifest converts r for encoding; errors become their messages.
func (r *TicketReport) Manifest() Manifest {
	m := Manifest{
		TotalUsers:   r.TotalUsers,
		Succeeded:    r.Succeeded,
		Failed:       r.Failed,
		TotalTickets: r.TotalTickets,
		TotalRevenue: r.TotalRevenue,
		Users:        make([]ManifestUser, 0, len(r.Users)),
	}
	for _, u := range r.Users {
		mu := ManifestUser{ID: u.User.ID, Username: u.User.Username, Tickets: u.Count, Revenue: u.Revenue, File: u.File}
		if u.Error != nil {
			mu.Error = u.Error.Error()
		}
		m.Users = append(m.Users, mu)
	}
	return m
}

func writeManifest(r *TicketReport, path string) error {
	data, err := json.MarshalIndent(r.Manifest(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return formatter.WriteFile(path, data)
}
