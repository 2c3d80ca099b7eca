package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	cinema   services.Cinema
	api      *services.APIService
	sessions *auth.Store
	db       *sql.DB
	logger   *log.Logger
	output   io.Writer
	now      func() time.Time
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Cinema   services.Cinema      // anonymous client; defaults to one built from Config.API
	API      *services.APIService // raw client for `marquee api`
	Sessions *auth.Store          // defaults to the configured database, opened on first use
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Cinema == nil {
		svc := services.NewCinemaServiceFromConfig(opts.Config.API)
		svc.SetLogger(opts.Logger)
		opts.Cinema = svc
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.API.BaseURL, services.NewHTTPClient(opts.Config.API))
	}

	return &Runner{
		config:   opts.Config,
		cinema:   opts.Cinema,
		api:      opts.API,
		sessions: opts.Sessions,
		logger:   opts.Logger,
		output:   opts.Output,
		now:      time.Now,
	}
}

// Configure rebuilds the API clients from config and forgets any open session store.
func (r *Runner) Configure(config *shared.Config) {
	r.Close()
	r.config = config
	r.sessions = nil

	svc := services.NewCinemaServiceFromConfig(config.API)
	svc.SetLogger(r.logger)
	r.cinema = svc
	r.api = services.NewAPIService(config.API.BaseURL, services.NewHTTPClient(config.API))
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	if l == nil {
		return
	}
	r.logger = l
	if svc, ok := r.cinema.(*services.CinemaService); ok {
		svc.SetLogger(l)
	}
}

// Close releases the session database, if it was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, projectionsCommand, ticketsCommand,
		userCommand, adminCommand, apiCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// store opens the session database on first use.
func (r *Runner) store() (*auth.Store, error) {
	if r.sessions != nil {
		return r.sessions, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	r.db = db
	r.sessions = auth.NewStore(repositories.NewSessionRepository(db), r.logger)
	return r.sessions, nil
}

// session returns the current CLI session, anonymous when nobody is logged in.
func (r *Runner) session(ctx context.Context) (auth.Session, error) {
	st, err := r.store()
	if err != nil {
		return auth.Anonymous, err
	}
	return st.Current(ctx, models.SessionCLI)
}

// client returns the cinema client acting for the current session.
func (r *Runner) client(ctx context.Context) (services.Cinema, auth.Session, error) {
	s, err := r.session(ctx)
	if err != nil {
		return nil, s, err
	}
	return r.cinema.WithToken(s.Token), s, nil
}

// requireRole returns a client for the current session when it holds role ("" means any login).
func (r *Runner) requireRole(ctx context.Context, role string) (services.Cinema, auth.Session, error) {
	client, s, err := r.client(ctx)
	if err != nil {
		return nil, s, err
	}
	if !s.Authenticated() {
		return nil, s, fmt.Errorf("%w: run `marquee auth login` first", shared.ErrNotAuthenticated)
	}
	if role != "" && s.Role != role {
		return nil, s, fmt.Errorf("%w: %s is logged in as %s, this needs %s", shared.ErrForbidden, s.Username, s.Role, role)
	}
	return client, s, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// writeTable renders rows under headers with a plain border.
func (r *Runner) writeTable(headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	return r.writePlain("%s\n", t.String())
}

// emit writes data as JSON when asJSON is set, otherwise calls plain.
func (r *Runner) emit(asJSON bool, data any, plain func() error) error {
	if asJSON {
		return r.writeJSON(data, true)
	}
	return plain()
}
