package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
	tu "github.com/desertthunder/marquee/internal/testing"
	"github.com/urfave/cli/v3"
)

// harness runs commands against a fake API with an in-memory session store.
type harness struct {
	fake   *tu.FakeAPI
	runner *Runner
	output *bytes.Buffer
	config *shared.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	fake := tu.NewFakeAPI(t)
	config := shared.DefaultConfig()
	config.API.BaseURL = fake.URL()
	output := &bytes.Buffer{}

	runner := NewRunner(RunnerOpts{
		Config:   config,
		Cinema:   services.NewCinemaService(fake.URL(), nil, nil),
		API:      services.NewAPIService(fake.URL(), nil),
		Sessions: auth.NewStore(repositories.NewSessionRepository(db), nil),
		Output:   output,
	})

	return &harness{fake: fake, runner: runner, output: output, config: config}
}

// run executes args (without the program name) and returns what the command printed.
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	h.output.Reset()

	app := &cli.Command{
		Name:      "marquee",
		Writer:    io.Discard,
		ErrWriter: io.Discard,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "config.toml"},
		},
		Commands: h.runner.register(),
	}
	err := app.Run(context.Background(), append([]string{"marquee"}, args...))
	return h.output.String(), err
}

func (h *harness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := h.run(t, args...)
	if err != nil {
		t.Fatalf("marquee %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func (h *harness) login(t *testing.T, username, password string) {
	t.Helper()
	h.mustRun(t, "auth", "login", "-u", username, "-p", password)
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			cinema := services.NewCinemaService("http://cinema.test/api", nil, nil)
			api := services.NewAPIService("http://cinema.test/api", nil)

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
				Cinema: cinema,
				API:    api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.cinema != cinema {
				t.Error("expected cinema to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.cinema == nil || runner.api == nil {
				t.Error("expected API clients built from config")
			}
			if runner.sessions != nil {
				t.Error("expected the session store to open lazily")
			}
		})

		t.Run("Configure rebuilds clients for the new base URL", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			config := shared.DefaultConfig()
			config.API.BaseURL = "http://elsewhere.test/api"

			runner.Configure(config)

			svc, ok := runner.cinema.(*services.CinemaService)
			if !ok || svc.BaseURL() != "http://elsewhere.test/api" {
				t.Errorf("expected cinema client for new base URL, got %#v", runner.cinema)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writeTable renders headers and rows", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeTable([]string{"ID", "Title"}, [][]string{{"1", "Alien"}, {"2", "Heat"}}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertContains(t, output.String(), "ID", "Title", "Alien", "Heat")
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
				continue
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "auth", "movies", "projections", "tickets", "user", "admin", "api", "serve", "tui"} {
			if !names[want] {
				t.Errorf("expected %q command", want)
			}
		}
	})
}
