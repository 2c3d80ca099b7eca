package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/tasks"
	"github.com/desertthunder/marquee/internal/views"
	"github.com/urfave/cli/v3"
)

func (r *Runner) writeUser(u *models.User) {
	r.writePlain("Username: %s\n", u.Username)
	r.writePlain("Email:    %s\n", u.Email)
	r.writePlain("Role:     %s\n", u.Role)
}

// UserInfo prints the logged-in user's profile.
func (r *Runner) UserInfo(ctx context.Context, cmd *cli.Command) error {
	client, _, err := r.requireRole(ctx, "")
	if err != nil {
		return err
	}
	u, err := client.UserInfo(ctx, "")
	if err != nil {
		return err
	}
	return r.emit(cmd.Bool("json"), u, func() error {
		r.writePlainHeader("User Info")
		r.writeUser(u)
		return nil
	})
}

// ChangePassword changes the logged-in user's password.
func (r *Runner) ChangePassword(ctx context.Context, cmd *cli.Command) error {
	client, s, err := r.requireRole(ctx, "")
	if err != nil {
		return err
	}
	req, err := views.PasswordForm{
		Username:        s.Username,
		CurrentPassword: cmd.String("current"),
		NewPassword:     cmd.String("new"),
	}.Validate()
	if err != nil {
		return err
	}
	if err := client.ChangePassword(ctx, req); err != nil {
		return err
	}
	return r.writePlain("✓ Password changed\n")
}

// AdminUsers lists users matching the search.
func (r *Runner) AdminUsers(ctx context.Context, cmd *cli.Command) error {
	sortBy := cmd.String("sort")
	if sortBy != "" && sortBy != models.UserSortUsername && sortBy != models.UserSortRole {
		return fmt.Errorf("%w: sort must be username or role", shared.ErrInvalidFlag)
	}
	q := models.UserQuery{Username: cmd.String("username"), SortBy: sortBy, SortDirection: models.SortAsc}
	if cmd.Bool("desc") {
		q.SortDirection = models.SortDesc
	}

	client, _, err := r.requireRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	users, err := client.Users(ctx, q)
	if err != nil {
		return err
	}

	return r.emit(cmd.Bool("json"), users, func() error {
		if len(users) == 0 {
			return r.writePlain("No users found\n")
		}
		rows := make([][]string, 0, len(users))
		for _, u := range users {
			rows = append(rows, []string{u.ID, u.Username, u.Email, u.Role})
		}
		return r.writeTable([]string{"ID", "Username", "Email", "Role"}, rows)
	})
}

type adminUserView struct {
	User    *models.User    `json:"user"`
	Tickets []models.Ticket `json:"tickets"`
}

// AdminUser prints a user's profile and bought tickets.
func (r *Runner) AdminUser(ctx context.Context, cmd *cli.Command) error {
	userID := strings.TrimSpace(cmd.StringArg("userId"))
	if userID == "" {
		return fmt.Errorf("%w: <userId> is required", shared.ErrMissingArgument)
	}
	client, _, err := r.requireRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}

	u, err := client.UserInfo(ctx, userID)
	if err != nil {
		return err
	}
	tickets, err := client.UserTickets(ctx, userID)
	if err != nil {
		return err
	}

	return r.emit(cmd.Bool("json"), adminUserView{User: u, Tickets: tickets}, func() error {
		r.writePlainHeader("User Info")
		r.writeUser(u)
		r.writePlainln("User's bought tickets")
		return r.writeTickets(tickets)
	})
}

// AdminDeleteUser deletes a user account.
func (r *Runner) AdminDeleteUser(ctx context.Context, cmd *cli.Command) error {
	userID := strings.TrimSpace(cmd.StringArg("userId"))
	if userID == "" {
		return fmt.Errorf("%w: <userId> is required", shared.ErrMissingArgument)
	}
	client, _, err := r.requireRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if err := client.DeleteUser(ctx, userID); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted user %s\n", userID)
}

// AdminRole changes a user's role. Demoting yourself also updates the stored session.
func (r *Runner) AdminRole(ctx context.Context, cmd *cli.Command) error {
	req, err := views.RoleForm{Username: strings.TrimSpace(cmd.String("username")), Role: cmd.String("role")}.Validate()
	if err != nil {
		return err
	}
	client, s, err := r.requireRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if err := client.UpdateRole(ctx, req); err != nil {
		return err
	}

	if req.Username == s.Username && req.Role != s.Role {
		if err := r.sessions.UpdateRole(ctx, s.ID, req.Role); err != nil {
			r.logger.Warn("failed to update stored session role", "error", err)
		}
	}
	return r.writePlain("✓ %s is now %s\n", req.Username, req.Role)
}

// AdminReport fetches every selected user's tickets with a worker pool and prints the totals.
func (r *Runner) AdminReport(ctx context.Context, cmd *cli.Command) error {
	opts := tasks.ReportOpts{
		Usernames:  cmd.StringSlice("user"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
		OutputDir:  cmd.String("output"),
	}
	if opts.OutputDir != "" {
		format, err := formatter.ParseFormat(cmd.String("format"))
		if err != nil {
			return err
		}
		opts.Format = format
	}

	client, _, err := r.requireRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}

	engine := tasks.NewReportEngine(client, r.logger)
	asJSON := cmd.Bool("json")

	progress := make(chan tasks.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			if asJSON {
				continue
			}
			r.writePlain("%s\n", update.Message)
		}
	}()

	report, err := engine.Run(ctx, progress, opts)
	close(progress)
	wg.Wait()
	if err != nil && report == nil {
		return err
	}

	if asJSON {
		if werr := r.writeJSON(report.Manifest(), true); werr != nil {
			return werr
		}
		return err
	}

	r.writePlainln("Ticket report")
	rows := make([][]string, 0, len(report.Users))
	for _, u := range report.Users {
		status := strconv.Itoa(u.Count)
		if u.Failed() {
			status = "error: " + u.Error.Error()
		}
		rows = append(rows, []string{u.User.Username, status, shared.FormatPrice(u.Revenue)})
	}
	r.writeTable([]string{"Username", "Tickets", "Revenue"}, rows)
	r.writePlain("Users: %d (%d failed)  Tickets: %d  Revenue: %s\n",
		report.TotalUsers, report.Failed, report.TotalTickets, shared.FormatPrice(report.TotalRevenue))
	if report.ManifestPath != "" {
		r.writePlain("Report written to %s\n", report.ManifestPath)
	}
	return err
}
