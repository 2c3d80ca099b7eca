package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/marquee/internal/models"
)

// Projections lists projections matching q.
//
// Calls GET /projections.
func (c *CinemaService) Projections(ctx context.Context, q models.ProjectionQuery) ([]models.Projection, error) {
	var projections models.Values[models.Projection]
	err := c.doRequest(ctx, request{
		method:   http.MethodGet,
		endpoint: "/projections",
		query:    q.Values(),
		result:   &projections,
		fallback: "Failed to fetch projections",
	})
	return projections, err
}

// Projection fetches one projection.
//
// Calls GET /projections/{id}.
func (c *CinemaService) Projection(ctx context.Context, id int) (*models.Projection, error) {
	var p models.Projection
	if err := c.doRequest(ctx, request{
		method:   http.MethodGet,
		endpoint: fmt.Sprintf("/projections/%d", id),
		result:   &p,
		fallback: "Failed to fetch projection details",
	}); err != nil {
		return nil, err
	}
	return &p, nil
}

// Seats lists the seats of a projection with their availability.
//
// Calls GET /projections/{id}/seats.
func (c *CinemaService) Seats(ctx context.Context, projectionID int) ([]models.Seat, error) {
	var seats models.Values[models.Seat]
	err := c.doRequest(ctx, request{
		method:   http.MethodGet,
		endpoint: fmt.Sprintf("/projections/%d/seats", projectionID),
		result:   &seats,
		fallback: "Failed to fetch seats",
	})
	return seats, err
}

// MovieProjections lists the projections of one movie. Requires a token.
//
// Calls GET /projections/movies/{movieId}.
func (c *CinemaService) MovieProjections(ctx context.Context, movieID int) ([]models.Projection, error) {
	var projections models.Values[models.Projection]
	err := c.doRequest(ctx, request{
		method:   http.MethodGet,
		endpoint: fmt.Sprintf("/projections/movies/%d", movieID),
		result:   &projections,
		auth:     true,
		fallback: "Failed to fetch projections",
	})
	return projections, err
}

// CreateProjection schedules a projection. Requires an admin token.
//
// Calls POST /projections.
func (c *CinemaService) CreateProjection(ctx context.Context, in models.ProjectionInput) error {
	return c.doRequest(ctx, request{
		method:   http.MethodPost,
		endpoint: "/projections",
		body:     in,
		auth:     true,
		fallback: "Failed to add projection",
	})
}

// DeleteProjection removes a projection and returns the API's confirmation. Requires an admin token.
//
// Calls DELETE /projections/{id}.
func (c *CinemaService) DeleteProjection(ctx context.Context, id int) (string, error) {
	var msg models.Message
	if err := c.doRequest(ctx, request{
		method:   http.MethodDelete,
		endpoint: fmt.Sprintf("/projections/%d", id),
		result:   &msg,
		auth:     true,
		fallback: "Failed to delete projection",
	}); err != nil {
		return "", err
	}
	if msg.Message == "" {
		msg.Message = fmt.Sprintf("Projection %d deleted", id)
	}
	return msg.Message, nil
}

// ProjectionTypes lists the projection formats (2D, 3D, ...).
//
// Calls GET /projectiontypes.
func (c *CinemaService) ProjectionTypes(ctx context.Context) ([]models.ProjectionType, error) {
	var types models.Values[models.ProjectionType]
	err := c.doRequest(ctx, request{
		method:   http.MethodGet,
		endpoint: "/projectiontypes",
		result:   &types,
		fallback: "Failed to fetch projection types",
	})
	return types, err
}

// Theaters lists the theaters.
//
// Calls GET /theaters.
func (c *CinemaService) Theaters(ctx context.Context) ([]models.Theater, error) {
	var theaters models.Values[models.Theater]
	err := c.doRequest(ctx, request{
		method:   http.MethodGet,
		endpoint: "/theaters",
		result:   &theaters,
		fallback: "Failed to fetch theaters",
	})
	return theaters, err
}
