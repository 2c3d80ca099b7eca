package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/marquee/internal/server"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the browser front end until the context is canceled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.Int("port")
	}

	st, err := r.store()
	if err != nil {
		return err
	}
	if n, err := st.Prune(ctx); err != nil {
		r.logger.Warn("failed to prune expired sessions", "error", err)
	} else if n > 0 {
		r.logger.Info("pruned expired sessions", "count", n)
	}

	app, err := web.New(web.Options{
		Cinema:        r.cinema,
		Sessions:      st,
		Logger:        r.logger,
		UI:            r.config.UI,
		SessionTTL:    cfg.SessionTTL(),
		SecureCookies: cmd.Bool("secure-cookies"),
	})
	if err != nil {
		return fmt.Errorf("failed to build web app: %w", err)
	}

	srv := server.New(cfg.Addr(), app.Handler())
	url := "http://" + cfg.Host + ":" + strconv.Itoa(cfg.Port)

	ready := func() {
		r.writePlain("Serving marquee at %s (ctrl+c to stop)\n", url)
		if cmd.Bool("open") {
			if err := shared.OpenBrowser(url); err != nil {
				r.logger.Warn("failed to open browser", "error", err)
			}
		}
	}

	return server.Serve(ctx, srv, r.logger, ready)
}
