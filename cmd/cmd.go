// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
}

func idArg(name string) []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: name, UsageText: "<" + name + ">"}}
}

func movieFilterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Filter by title"},
		&cli.StringFlag{Name: "genre", Usage: "Filter by genre"},
		&cli.StringFlag{Name: "distributor", Usage: "Filter by distributor"},
		&cli.StringFlag{Name: "country", Usage: "Filter by country of origin"},
		&cli.StringFlag{Name: "duration-from", Usage: "Minimum duration in minutes"},
		&cli.StringFlag{Name: "duration-to", Usage: "Maximum duration in minutes"},
		&cli.StringFlag{Name: "year-from", Usage: "Earliest release year"},
		&cli.StringFlag{Name: "year-to", Usage: "Latest release year"},
		&cli.StringFlag{
			Name:  "sort",
			Usage: "Sort order: title, genre, duration, distributor, country or year, optionally suffixed with _desc",
		},
	}
}

func movieFieldFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Movie title", Required: required},
		&cli.StringFlag{Name: "director", Usage: "Director"},
		&cli.StringFlag{Name: "actors", Usage: "Comma separated cast"},
		&cli.StringFlag{Name: "genre", Usage: "Genre"},
		&cli.StringFlag{Name: "duration", Usage: "Duration in minutes"},
		&cli.StringFlag{Name: "distributor", Usage: "Distributor"},
		&cli.StringFlag{Name: "country", Usage: "Country of origin"},
		&cli.StringFlag{Name: "year", Usage: "Release year"},
		&cli.StringFlag{Name: "description", Usage: "Synopsis"},
	}
}

func exportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Export format: csv, md, txt or json",
			Value:   "csv",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default depends on the format)",
		},
	}
}

// setupCommand prepares the local session database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml if missing, initialize the database and run migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "rollback", Usage: "Roll back the most recent migration"},
			&cli.BoolFlag{Name: "status", Usage: "List applied migrations"},
		},
		Action: r.SetupDatabase,
	}
}

// authCommand manages the CLI session.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Log in, register and manage the stored session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in and store the session token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Username", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password", Required: true},
				},
				Action: r.Login,
			},
			{
				Name:  "register",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Username", Required: true},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address"},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password", Required: true},
					&cli.StringFlag{Name: "confirm", Usage: "Repeat the password (defaults to --password)"},
					&cli.StringFlag{Name: "role", Usage: "User or Admin", Value: "User"},
				},
				Action: r.Register,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored session",
				Action: r.Logout,
			},
			{
				Name:   "status",
				Usage:  "Show who is logged in",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.AuthStatus,
			},
		},
	}
}

// moviesCommand browses and manages the movie catalogue.
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse and manage movies",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List movies",
				Flags:  append(movieFilterFlags(), jsonFlag()),
				Action: r.MoviesList,
			},
			{
				Name:      "show",
				Usage:     "Show a movie's details",
				Arguments: idArg("id"),
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.MovieShow,
			},
			{
				Name:      "projections",
				Usage:     "List upcoming projections of a movie (requires login)",
				Arguments: idArg("id"),
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.MovieProjections,
			},
			{
				Name:   "add",
				Usage:  "Add a movie (admin)",
				Flags:  movieFieldFlags(true),
				Action: r.MovieAdd,
			},
			{
				Name:      "edit",
				Usage:     "Edit a movie; omitted flags keep their current value (admin)",
				Arguments: idArg("id"),
				Flags:     movieFieldFlags(false),
				Action:    r.MovieEdit,
			},
			{
				Name:      "delete",
				Usage:     "Delete a movie (admin)",
				Arguments: idArg("id"),
				Action:    r.MovieDelete,
			},
			{
				Name:   "export",
				Usage:  "Export the filtered movie list to a file",
				Flags:  append(movieFilterFlags(), exportFlags()...),
				Action: r.MoviesExport,
			},
		},
	}
}

// projectionsCommand browses projections and their seats.
func projectionsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "projections",
		Aliases: []string{"p"},
		Usage:   "Browse and manage projections",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List projections a page at a time",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "movie", Usage: "Filter by movie title"},
					&cli.StringFlag{Name: "date-from", Usage: "Earliest date (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "date-to", Usage: "Latest date (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "type", Usage: "Projection type id"},
					&cli.StringFlag{Name: "theater", Usage: "Theater id"},
					&cli.StringFlag{Name: "price-from", Usage: "Minimum price"},
					&cli.StringFlag{Name: "price-to", Usage: "Maximum price"},
					&cli.StringFlag{Name: "sort", Usage: "Sort by date, price or title"},
					&cli.BoolFlag{Name: "desc", Usage: "Sort descending"},
					&cli.IntFlag{Name: "page", Usage: "Page number", Value: 1},
					&cli.BoolFlag{Name: "all", Usage: "List every projection without paging"},
					jsonFlag(),
				},
				Action: r.ProjectionsList,
			},
			{
				Name:      "show",
				Usage:     "Show a projection",
				Arguments: idArg("id"),
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.ProjectionShow,
			},
			{
				Name:      "seats",
				Usage:     "Show the seat map of a projection",
				Arguments: idArg("id"),
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.ProjectionSeats,
			},
			{
				Name:  "add",
				Usage: "Schedule a projection (admin)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "movie", Usage: "Movie id", Required: true},
					&cli.StringFlag{Name: "type", Usage: "Projection type id", Required: true},
					&cli.StringFlag{Name: "theater", Usage: "Theater id", Required: true},
					&cli.StringFlag{Name: "date", Usage: "Start time, e.g. 2025-05-17T20:30", Required: true},
					&cli.StringFlag{Name: "price", Usage: "Ticket price", Required: true},
				},
				Action: r.ProjectionAdd,
			},
			{
				Name:      "delete",
				Usage:     "Delete a projection (admin)",
				Arguments: idArg("id"),
				Action:    r.ProjectionDelete,
			},
			{
				Name:   "types",
				Usage:  "List projection types",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.ProjectionTypes,
			},
			{
				Name:   "theaters",
				Usage:  "List theaters",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.Theaters,
			},
		},
	}
}

// ticketsCommand buys and lists tickets.
func ticketsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tickets",
		Aliases: []string{"t"},
		Usage:   "Buy and list tickets",
		Commands: []*cli.Command{
			{
				Name:  "buy",
				Usage: "Buy a ticket for a seat (user)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "projection", Usage: "Projection id", Required: true},
					&cli.StringFlag{Name: "seat", Usage: "Seat id, as listed by `projections seats`", Required: true},
					jsonFlag(),
				},
				Action: r.TicketBuy,
			},
			{
				Name:   "mine",
				Usage:  "List your bought tickets",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.TicketsMine,
			},
			{
				Name:   "export",
				Usage:  "Export your bought tickets to a file",
				Flags:  exportFlags(),
				Action: r.TicketsExport,
			},
		},
	}
}

// userCommand shows and updates the current account.
func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Show and update your account",
		Commands: []*cli.Command{
			{
				Name:   "info",
				Usage:  "Show your profile",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.UserInfo,
			},
			{
				Name:  "password",
				Usage: "Change your password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "current", Usage: "Current password", Required: true},
					&cli.StringFlag{Name: "new", Usage: "New password", Required: true},
				},
				Action: r.ChangePassword,
			},
		},
	}
}

// adminCommand manages users.
func adminCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Manage users (admin)",
		Commands: []*cli.Command{
			{
				Name:  "users",
				Usage: "List users",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Usage: "Search by username"},
					&cli.StringFlag{Name: "sort", Usage: "Sort by username or role"},
					&cli.BoolFlag{Name: "desc", Usage: "Sort descending"},
					jsonFlag(),
				},
				Action: r.AdminUsers,
			},
			{
				Name:      "user",
				Usage:     "Show a user and their tickets",
				Arguments: idArg("userId"),
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.AdminUser,
			},
			{
				Name:      "delete",
				Usage:     "Delete a user",
				Arguments: idArg("userId"),
				Action:    r.AdminDeleteUser,
			},
			{
				Name:  "role",
				Usage: "Change a user's role",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Username", Required: true},
					&cli.StringFlag{Name: "role", Usage: "User or Admin", Required: true},
				},
				Action: r.AdminRole,
			},
			{
				Name:  "report",
				Usage: "Fetch every user's tickets concurrently and total them",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "user", Usage: "Only report these usernames (repeatable)"},
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Concurrent fetches", Value: 4},
					&cli.FloatFlag{Name: "rate", Usage: "Requests per second", Value: 5},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Per-user export format", Value: "txt"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Directory for per-user exports and report.json"},
					jsonFlag(),
				},
				Action: r.AdminReport,
			},
		},
	}
}

// apiCommand makes raw requests for debugging.
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Make raw requests to the cinema API with the stored session",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "GET a path, e.g. /movies",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path", UsageText: "<path>"}},
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.APIGet,
			},
			{
				Name:      "post",
				Usage:     "POST JSON to a path",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path", UsageText: "<path>"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "JSON request body", Required: true},
				},
				Action: r.APIPost,
			},
		},
	}
}

// serveCommand runs the browser front end.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the browser front end",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host (default from config)"},
			&cli.IntFlag{Name: "port", Usage: "Listen port (default from config)"},
			&cli.BoolFlag{Name: "open", Usage: "Open the site in a browser once listening"},
			&cli.BoolFlag{Name: "secure-cookies", Usage: "Mark session cookies Secure (behind TLS)"},
		},
		Action: r.Serve,
	}
}

// tuiCommand runs the terminal front end.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse projections and buy tickets in the terminal",
		Action: r.TUI,
	}
}
