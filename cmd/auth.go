package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/views"
	"github.com/urfave/cli/v3"
)

// parseID reads a positive integer argument named name.
func parseID(cmd *cli.Command, name string) (int, error) {
	raw := strings.TrimSpace(cmd.StringArg(name))
	if raw == "" {
		return 0, fmt.Errorf("%w: <%s> is required", shared.ErrMissingArgument, name)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: <%s> must be a positive number, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return id, nil
}

// Login exchanges credentials for a token and stores it as the CLI session.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	req, err := views.LoginForm{Username: cmd.String("username"), Password: cmd.String("password")}.Validate()
	if err != nil {
		return err
	}

	st, err := r.store()
	if err != nil {
		return err
	}

	r.logger.Info("logging in", "username", req.Username)
	resp, err := r.cinema.Login(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	s, err := st.Login(ctx, models.SessionCLI, *resp, r.config.Server.SessionTTL())
	if err != nil {
		return err
	}

	r.writePlain("✓ Logged in as %s\n", s)
	if s.ExpiresAt != nil {
		r.writePlain("Session expires %s\n", shared.FormatDateTime(*s.ExpiresAt))
	}
	return nil
}

// Register creates an account. It does not log in.
func (r *Runner) Register(ctx context.Context, cmd *cli.Command) error {
	confirm := cmd.String("confirm")
	if confirm == "" {
		confirm = cmd.String("password")
	}

	req, err := views.RegistrationForm{
		Username:        cmd.String("username"),
		Email:           cmd.String("email"),
		Password:        cmd.String("password"),
		ConfirmPassword: confirm,
		Role:            cmd.String("role"),
	}.Validate()
	if err != nil {
		return err
	}

	r.logger.Info("registering", "username", req.Username, "role", req.Role)
	if err := r.cinema.Register(ctx, req); err != nil {
		return err
	}

	r.writePlain("✓ Registered %s as %s\n", req.Username, req.Role)
	r.writePlain("Run 'marquee auth login -u %s -p ...' to log in\n", req.Username)
	return nil
}

// Logout forgets the stored CLI session.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	st, err := r.store()
	if err != nil {
		return err
	}
	if err := st.LogoutKind(ctx, models.SessionCLI); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	return r.writePlain("✓ Logged out\n")
}

type authStatus struct {
	Authenticated bool    `json:"authenticated"`
	Username      string  `json:"username,omitempty"`
	Role          string  `json:"role,omitempty"`
	ExpiresAt     *string `json:"expiresAt,omitempty"`
	APIBaseURL    string  `json:"apiBaseUrl"`
}

// AuthStatus reports the stored CLI session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	s, err := r.session(ctx)
	if err != nil {
		return err
	}

	status := authStatus{
		Authenticated: s.Authenticated(),
		Username:      s.Username,
		Role:          s.Role,
		APIBaseURL:    r.config.API.BaseURL,
	}
	if s.ExpiresAt != nil {
		exp := s.ExpiresAt.Format("2006-01-02T15:04:05Z07:00")
		status.ExpiresAt = &exp
	}

	return r.emit(cmd.Bool("json"), status, func() error {
		r.writePlainHeader("Session")
		r.writePlain("API:     %s\n", status.APIBaseURL)
		r.writePlain("Session: %s\n", s)
		if s.ExpiresAt != nil {
			r.writePlain("Expires: %s\n", shared.FormatDateTime(*s.ExpiresAt))
		}
		return nil
	})
}
