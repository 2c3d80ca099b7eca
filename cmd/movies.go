package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/views"
	"github.com/urfave/cli/v3"
)

func movieQuery(cmd *cli.Command) (models.MovieQuery, error) {
	q := models.MovieQuery{
		Title:        cmd.String("title"),
		Genre:        cmd.String("genre"),
		Distributor:  cmd.String("distributor"),
		Country:      cmd.String("country"),
		DurationFrom: cmd.String("duration-from"),
		DurationTo:   cmd.String("duration-to"),
		YearFrom:     cmd.String("year-from"),
		YearTo:       cmd.String("year-to"),
		SortOrder:    cmd.String("sort"),
	}
	if q.SortOrder != "" && !views.ValidMovieSort(q.SortOrder) {
		return q, fmt.Errorf("%w: unknown sort order %q", shared.ErrInvalidFlag, q.SortOrder)
	}
	return q, nil
}

func (r *Runner) activeMovies(ctx context.Context, cmd *cli.Command) ([]models.Movie, error) {
	q, err := movieQuery(cmd)
	if err != nil {
		return nil, err
	}
	client, _, err := r.client(ctx)
	if err != nil {
		return nil, err
	}
	movies, err := client.Movies(ctx, q)
	if err != nil {
		return nil, err
	}
	return models.ActiveMovies(movies), nil
}

// MoviesList prints the filtered movie catalogue.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	movies, err := r.activeMovies(ctx, cmd)
	if err != nil {
		return err
	}

	return r.emit(cmd.Bool("json"), movies, func() error {
		if len(movies) == 0 {
			return r.writePlain("No movies found\n")
		}
		rows := make([][]string, 0, len(movies))
		for _, m := range movies {
			rows = append(rows, []string{
				strconv.Itoa(m.ID), m.Title, m.Genre, fmt.Sprintf("%d min", m.Duration),
				m.Distributor, m.CountryOrigin, strconv.Itoa(m.ReleaseYear),
			})
		}
		return r.writeTable([]string{"ID", "Title", "Genre", "Duration", "Distributor", "Country", "Year"}, rows)
	})
}

// MovieShow prints one movie.
func (r *Runner) MovieShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "id")
	if err != nil {
		return err
	}
	client, _, err := r.client(ctx)
	if err != nil {
		return err
	}
	m, err := client.Movie(ctx, id)
	if err != nil {
		return err
	}

	return r.emit(cmd.Bool("json"), m, func() error {
		r.writePlainHeader(m.Title)
		r.writePlain("Director:     %s\n", m.Director)
		r.writePlain("Actors:       %s\n", m.Actors)
		r.writePlain("Genre:        %s\n", m.Genre)
		r.writePlain("Duration:     %d min\n", m.Duration)
		r.writePlain("Distributor:  %s\n", m.Distributor)
		r.writePlain("Country:      %s\n", m.CountryOrigin)
		r.writePlain("Release year: %d\n", m.ReleaseYear)
		if m.Description != "" {
			r.writePlainln("%s", m.Description)
		}
		return nil
	})
}

// MovieProjections lists a movie's projections. The API only serves this to logged-in users.
func (r *Runner) MovieProjections(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "id")
	if err != nil {
		return err
	}
	client, _, err := r.requireRole(ctx, "")
	if err != nil {
		return err
	}
	projections, err := client.MovieProjections(ctx, id)
	if err != nil {
		return err
	}
	projections = models.ActiveProjections(projections)

	return r.emit(cmd.Bool("json"), projections, func() error {
		if len(projections) == 0 {
			return r.writePlain("There is no projections of this movie\n")
		}
		return r.writeProjections(projections)
	})
}

func movieFormFrom(cmd *cli.Command, base views.MovieForm) views.MovieForm {
	set := func(flag string, dst *string) {
		if cmd.IsSet(flag) {
			*dst = cmd.String(flag)
		}
	}
	set("title", &base.Title)
	set("director", &base.Director)
	set("actors", &base.Actors)
	set("genre", &base.Genre)
	set("duration", &base.Duration)
	set("distributor", &base.Distributor)
	set("country", &base.CountryOrigin)
	set("year", &base.ReleaseYear)
	set("description", &base.Description)
	return base
}

// MovieAdd creates a movie.
func (r *Runner) MovieAdd(ctx context.Context, cmd *cli.Command) error {
	in, err := movieFormFrom(cmd, views.MovieForm{}).Validate()
	if err != nil {
		return err
	}
	client, _, err := r.requireRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if err := client.CreateMovie(ctx, in); err != nil {
		return err
	}
	return r.writePlain("✓ Added %s\n", in.Title)
}

// MovieEdit updates the flags given on the command line and keeps the rest.
func (r *Runner) MovieEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "id")
	if err != nil {
		return err
	}
	client, _, err := r.requireRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}

	current, err := client.Movie(ctx, id)
	if err != nil {
		return err
	}
	in, err := movieFormFrom(cmd, views.MovieFormFrom(*current)).Validate()
	if err != nil {
		return err
	}
	if err := client.UpdateMovie(ctx, in); err != nil {
		return err
	}
	return r.writePlain("✓ Updated %s\n", in.Title)
}

// MovieDelete soft-deletes a movie.
func (r *Runner) MovieDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "id")
	if err != nil {
		return err
	}
	client, _, err := r.requireRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if err := client.DeleteMovie(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted movie %d\n", id)
}

// MoviesExport writes the filtered catalogue to a file.
func (r *Runner) MoviesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	movies, err := r.activeMovies(ctx, cmd)
	if err != nil {
		return err
	}

	data, err := formatter.Movies(movies, format)
	if err != nil {
		return err
	}

	path := cmd.String("output")
	if path == "" {
		path = formatter.DefaultFilename("movies", format)
	}
	if err := formatter.WriteFile(path, data); err != nil {
		return err
	}

	r.logger.Info("exported movies", "count", len(movies), "path", path)
	return r.writePlain("✓ Exported %d movies to %s\n", len(movies), path)
}
