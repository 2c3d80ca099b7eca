// package services defines [Cinema], the client surface every front end talks to,
// and implements it over the cinema REST API.
package services

import (
	"context"

	"github.com/desertthunder/marquee/internal/models"
)

// Cinema is the remote cinema API as seen by the front ends.
//
// Implementations return rows exactly as the API sends them; callers drop soft-deleted rows.
type Cinema interface {
	// WithToken returns a copy that authorizes its requests with token.
	WithToken(token string) Cinema

	Movies(ctx context.Context, q models.MovieQuery) ([]models.Movie, error)
	Movie(ctx context.Context, id int) (*models.Movie, error)
	CreateMovie(ctx context.Context, in models.MovieInput) error
	UpdateMovie(ctx context.Context, in models.MovieInput) error
	DeleteMovie(ctx context.Context, id int) error

	Projections(ctx context.Context, q models.ProjectionQuery) ([]models.Projection, error)
	Projection(ctx context.Context, id int) (*models.Projection, error)
	Seats(ctx context.Context, projectionID int) ([]models.Seat, error)
	MovieProjections(ctx context.Context, movieID int) ([]models.Projection, error)
	CreateProjection(ctx context.Context, in models.ProjectionInput) error
	// DeleteProjection returns the confirmation message sent by the API.
	DeleteProjection(ctx context.Context, id int) (string, error)
	ProjectionTypes(ctx context.Context) ([]models.ProjectionType, error)
	Theaters(ctx context.Context) ([]models.Theater, error)

	BuyTicket(ctx context.Context, purchase models.TicketPurchase) error
	MyTickets(ctx context.Context) ([]models.Ticket, error)
	UserTickets(ctx context.Context, userID string) ([]models.Ticket, error)

	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) error
	// UserInfo returns the caller's profile when userID is empty.
	UserInfo(ctx context.Context, userID string) (*models.User, error)
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error
	Users(ctx context.Context, q models.UserQuery) ([]models.User, error)
	DeleteUser(ctx context.Context, userID string) error
	UpdateRole(ctx context.Context, req models.UpdateRoleRequest) error
}
