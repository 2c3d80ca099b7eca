package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/views"
	"github.com/urfave/cli/v3"
)

func (r *Runner) availability(p models.Projection) string {
	switch {
	case p.Ended(r.now()):
		return "Projection has ended"
	case p.SoldOut():
		return "No tickets available"
	default:
		return fmt.Sprintf("%d left", p.UnsoldTicketsCount)
	}
}

func (r *Runner) writeProjections(projections []models.Projection) error {
	rows := make([][]string, 0, len(projections))
	for _, p := range projections {
		rows = append(rows, []string{
			strconv.Itoa(p.ID), p.MovieTitle, shared.FormatDateTime(p.DateTime.Time),
			p.ProjectionType, p.Theater, shared.FormatPrice(p.Price), r.availability(p),
		})
	}
	return r.writeTable([]string{"ID", "Movie", "Date and Time", "Type", "Theater", "Price", "Tickets"}, rows)
}

// ProjectionsList prints one page of the filtered projections.
func (r *Runner) ProjectionsList(ctx context.Context, cmd *cli.Command) error {
	sortBy := cmd.String("sort")
	if sortBy != "" && !slices.Contains(models.ProjectionSortFields, sortBy) {
		return fmt.Errorf("%w: sort must be one of %s", shared.ErrInvalidFlag, strings.Join(models.ProjectionSortFields, ", "))
	}

	q := models.ProjectionQuery{
		MovieTitle:       cmd.String("movie"),
		DateFrom:         cmd.String("date-from"),
		DateTo:           cmd.String("date-to"),
		ProjectionTypeID: cmd.String("type"),
		TheaterID:        cmd.String("theater"),
		PriceFrom:        cmd.String("price-from"),
		PriceTo:          cmd.String("price-to"),
	}
	q = views.ProjectionSort{Field: sortBy, Descending: cmd.Bool("desc")}.Apply(q)

	client, _, err := r.client(ctx)
	if err != nil {
		return err
	}
	projections, err := client.Projections(ctx, q)
	if err != nil {
		return err
	}
	projections = models.ActiveProjections(projections)

	perPage := r.config.UI.ProjectionsPerPage
	if cmd.Bool("all") {
		perPage = max(len(projections), 1)
	}
	page := views.Paginate(projections, cmd.Int("page"), perPage)

	return r.emit(cmd.Bool("json"), page.Items, func() error {
		if page.Total == 0 {
			return r.writePlain("No projections found\n")
		}
		if err := r.writeProjections(page.Items); err != nil {
			return err
		}
		r.writePlain("Page %d of %d (%d projections)\n", page.Number, len(page.Numbers), page.Total)
		if page.HasNext() {
			r.writePlain("Next: --page %d\n", page.Number+1)
		}
		return nil
	})
}

// ProjectionShow prints one projection.
func (r *Runner) ProjectionShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "id")
	if err != nil {
		return err
	}
	client, _, err := r.client(ctx)
	if err != nil {
		return err
	}
	p, err := client.Projection(ctx, id)
	if err != nil {
		return err
	}

	return r.emit(cmd.Bool("json"), p, func() error {
		r.writePlainHeader(p.MovieTitle)
		r.writePlain("Date and Time: %s\n", shared.FormatDateTime(p.DateTime.Time))
		r.writePlain("Type:          %s\n", p.ProjectionType)
		r.writePlain("Theater:       %s\n", p.Theater)
		r.writePlain("Price:         %s\n", shared.FormatPrice(p.Price))
		r.writePlain("Tickets:       %s\n", r.availability(*p))
		return nil
	})
}

// ProjectionSeats prints the seat map. Taken seats are shown as [xx].
func (r *Runner) ProjectionSeats(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "id")
	if err != nil {
		return err
	}
	client, _, err := r.client(ctx)
	if err != nil {
		return err
	}
	seats, err := client.Seats(ctx, id)
	if err != nil {
		return err
	}

	return r.emit(cmd.Bool("json"), seats, func() error {
		if len(seats) == 0 {
			return r.writePlain("No seats found\n")
		}
		r.writePlainHeader("Select a Seat in " + views.SeatHall(seats))
		for _, row := range views.SeatGrid(seats, r.config.UI.SeatRowWidth) {
			cells := make([]string, 0, len(row))
			for _, s := range row {
				if s.IsAvailable {
					cells = append(cells, fmt.Sprintf("%3s:%-4d", s.Number, s.ID))
				} else {
					cells = append(cells, fmt.Sprintf("%3s:%-4s", s.Number, "xx"))
				}
			}
			r.writePlain("%s\n", strings.Join(cells, " "))
		}
		r.writePlain("%d of %d seats free. Buy with: marquee tickets buy --projection %d --seat <id>\n",
			models.AvailableSeats(seats), len(seats), id)
		return nil
	})
}

// ProjectionAdd schedules a projection.
func (r *Runner) ProjectionAdd(ctx context.Context, cmd *cli.Command) error {
	in, err := views.ProjectionForm{
		MovieID:          cmd.String("movie"),
		ProjectionTypeID: cmd.String("type"),
		TheaterID:        cmd.String("theater"),
		DateTime:         cmd.String("date"),
		Price:            cmd.String("price"),
	}.Validate()
	if err != nil {
		return err
	}
	client, _, err := r.requireRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if err := client.CreateProjection(ctx, in); err != nil {
		return err
	}
	return r.writePlain("✓ Projection scheduled for %s\n", shared.FormatDateTime(in.DateTime.Time))
}

// ProjectionDelete soft-deletes a projection and prints the API's confirmation.
func (r *Runner) ProjectionDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "id")
	if err != nil {
		return err
	}
	client, _, err := r.requireRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	msg, err := client.DeleteProjection(ctx, id)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = fmt.Sprintf("Deleted projection %d", id)
	}
	return r.writePlain("✓ %s\n", msg)
}

// ProjectionTypes lists projection formats.
func (r *Runner) ProjectionTypes(ctx context.Context, cmd *cli.Command) error {
	types, err := r.cinema.ProjectionTypes(ctx)
	if err != nil {
		return err
	}
	return r.emit(cmd.Bool("json"), types, func() error {
		rows := make([][]string, 0, len(types))
		for _, t := range types {
			rows = append(rows, []string{strconv.Itoa(t.ID), t.Type})
		}
		return r.writeTable([]string{"ID", "Type"}, rows)
	})
}

// Theaters lists screening rooms.
func (r *Runner) Theaters(ctx context.Context, cmd *cli.Command) error {
	theaters, err := r.cinema.Theaters(ctx)
	if err != nil {
		return err
	}
	return r.emit(cmd.Bool("json"), theaters, func() error {
		rows := make([][]string, 0, len(theaters))
		for _, t := range theaters {
			rows = append(rows, []string{strconv.Itoa(t.ID), t.Label()})
		}
		return r.writeTable([]string{"ID", "Theater"}, rows)
	})
}
