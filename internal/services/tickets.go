package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// BuyTicket buys the seat of a projection for the token's user.
//
// Calls POST /tickets/buy.
func (c *CinemaService) BuyTicket(ctx context.Context, purchase models.TicketPurchase) error {
	if purchase.SeatID <= 0 {
		return fmt.Errorf("%w: Please select a seat", shared.ErrMissingArgument)
	}
	return c.doRequest(ctx, request{
		method:   http.MethodPost,
		endpoint: "/tickets/buy",
		body:     purchase,
		auth:     true,
		fallback: "Failed to buy ticket",
	})
}

// MyTickets lists the token user's tickets.
//
// Calls GET /tickets/mytickets.
func (c *CinemaService) MyTickets(ctx context.Context) ([]models.Ticket, error) {
	var tickets models.Values[models.Ticket]
	err := c.doRequest(ctx, request{
		method:   http.MethodGet,
		endpoint: "/tickets/mytickets",
		result:   &tickets,
		auth:     true,
		fallback: "Failed to fetch tickets",
	})
	return tickets, err
}

// UserTickets lists another user's tickets. Requires an admin token.
//
// Calls GET /tickets/usertickets/{userId}.
func (c *CinemaService) UserTickets(ctx context.Context, userID string) ([]models.Ticket, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}
	var tickets models.Values[models.Ticket]
	err := c.doRequest(ctx, request{
		method:   http.MethodGet,
		endpoint: "/tickets/usertickets/" + url.PathEscape(userID),
		result:   &tickets,
		auth:     true,
		fallback: "Failed to fetch user tickets",
	})
	return tickets, err
}
