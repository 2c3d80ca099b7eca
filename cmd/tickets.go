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

func (r *Runner) writeTickets(tickets []models.Ticket) error {
	if len(tickets) == 0 {
		return r.writePlain("No tickets bought yet\n")
	}
	rows := make([][]string, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, []string{
			t.ProjectionMovieTitle, shared.FormatDateTime(t.ProjectionDateTime.Time),
			t.ProjectionType, t.Theater, t.Seat.String(), shared.FormatPrice(t.Price),
		})
	}
	if err := r.writeTable([]string{"Movie", "Date and Time", "Type", "Theater", "Seat", "Price"}, rows); err != nil {
		return err
	}
	return r.writePlain("Total: %s\n", shared.FormatPrice(models.TicketsTotal(tickets)))
}

// TicketBuy buys the seat for the projection. Only users can buy, and only for
// projections that have not started and still have seats.
func (r *Runner) TicketBuy(ctx context.Context, cmd *cli.Command) error {
	projectionID, err := strconv.Atoi(cmd.String("projection"))
	if err != nil || projectionID <= 0 {
		return fmt.Errorf("%w: --projection must be a projection id", shared.ErrInvalidFlag)
	}
	seatID, err := views.SeatChoice(cmd.String("seat"))
	if err != nil {
		return err
	}

	client, _, err := r.requireRole(ctx, models.RoleUser)
	if err != nil {
		return err
	}

	p, err := client.Projection(ctx, projectionID)
	if err != nil {
		return err
	}
	if !p.Bookable(r.now()) {
		return fmt.Errorf("%w: tickets for this projection cannot be bought (%s)", shared.ErrInvalidInput, r.availability(*p))
	}

	seats, err := client.Seats(ctx, projectionID)
	if err != nil {
		return err
	}
	seat, ok := models.FindSeat(seats, seatID)
	if !ok {
		return fmt.Errorf("%w: seat %d is not in this projection's theater", shared.ErrInvalidInput, seatID)
	}
	if !seat.IsAvailable {
		return fmt.Errorf("%w: seat %s is taken", shared.ErrInvalidInput, seat.Number)
	}

	r.logger.Info("buying ticket", "projection", projectionID, "seat", seatID)
	if err := client.BuyTicket(ctx, models.TicketPurchase{ProjectionID: projectionID, SeatID: seatID}); err != nil {
		return err
	}

	receipt := views.NewReceipt(*p, seats, seatID)
	return r.emit(cmd.Bool("json"), receipt, func() error {
		r.writePlainHeader("✓ Ticket Bought Successfully")
		r.writePlain("Projection:    %s\n", receipt.Projection)
		r.writePlain("Date and Time: %s\n", shared.FormatDateTime(receipt.DateTime.Time))
		r.writePlain("Seat:          %s\n", receipt.Seat)
		r.writePlain("Price:         %s\n", shared.FormatPrice(receipt.Price))
		return nil
	})
}

// TicketsMine lists the logged-in user's tickets.
func (r *Runner) TicketsMine(ctx context.Context, cmd *cli.Command) error {
	client, s, err := r.requireRole(ctx, models.RoleUser)
	if err != nil {
		return err
	}
	tickets, err := client.MyTickets(ctx)
	if err != nil {
		return err
	}

	return r.emit(cmd.Bool("json"), tickets, func() error {
		r.writePlainHeader("Bought Tickets: " + s.Username)
		return r.writeTickets(tickets)
	})
}

// TicketsExport writes the logged-in user's tickets to a file.
func (r *Runner) TicketsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	client, s, err := r.requireRole(ctx, models.RoleUser)
	if err != nil {
		return err
	}
	tickets, err := client.MyTickets(ctx)
	if err != nil {
		return err
	}

	data, err := formatter.Tickets(formatter.TicketExport{Title: "Tickets of " + s.Username, Tickets: tickets}, format)
	if err != nil {
		return err
	}

	path := cmd.String("output")
	if path == "" {
		path = formatter.DefaultFilename("tickets", format)
	}
	if err := formatter.WriteFile(path, data); err != nil {
		return err
	}

	r.logger.Info("exported tickets", "count", len(tickets), "path", path)
	return r.writePlain("✓ Exported %d tickets to %s\n", len(tickets), path)
}
