package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase creates config.toml when missing, initializes the database and runs migrations.
//
// --rollback undoes the latest migration instead; --status lists what has been applied.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
	}

	config := r.config
	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	switch {
	case cmd.Bool("rollback"):
		r.logger.Info("rolling back latest migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back: %w", err)
		}
		return r.writePlain("✓ Rolled back the latest migration\n")
	case cmd.Bool("status"):
		applied, err := shared.AppliedMigrations(db)
		if err != nil {
			return fmt.Errorf("failed to list migrations: %w", err)
		}
		if len(applied) == 0 {
			return r.writePlain("No migrations applied\n")
		}
		rows := make([][]string, 0, len(applied))
		for _, m := range applied {
			rows = append(rows, []string{fmt.Sprintf("%04d", m.Version), shared.FormatDateTime(m.AppliedAt)})
		}
		return r.writeTable([]string{"Version", "Applied"}, rows)
	}

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", config.Database.Path)
}
