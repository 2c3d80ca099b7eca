package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// Movies lists movies matching q.
//
// Calls GET /movies.
func (c *CinemaService) Movies(ctx context.Context, q models.MovieQuery) ([]models.Movie, error) {
	var movies models.Values[models.Movie]
	err := c.doRequest(ctx, request{
		method:   http.MethodGet,
		endpoint: "/movies",
		query:    q.Values(),
		result:   &movies,
		fallback: "Failed to fetch movies",
	})
	return movies, err
}

// Movie fetches one movie.
//
// Calls GET /movies/{id}.
func (c *CinemaService) Movie(ctx context.Context, id int) (*models.Movie, error) {
	var movie models.Movie
	if err := c.doRequest(ctx, request{
		method:   http.MethodGet,
		endpoint: fmt.Sprintf("/movies/%d", id),
		result:   &movie,
		fallback: "Failed to fetch movie details",
	}); err != nil {
		return nil, err
	}
	return &movie, nil
}

// CreateMovie adds a movie. Requires an admin token.
//
// Calls POST /movies.
func (c *CinemaService) CreateMovie(ctx context.Context, in models.MovieInput) error {
	in.ID = 0
	return c.doRequest(ctx, request{
		method:   http.MethodPost,
		endpoint: "/movies",
		body:     in,
		auth:     true,
		fallback: "Failed to add movie",
	})
}

// UpdateMovie replaces the movie identified by in.ID. Requires an admin token.
//
// Calls PUT /movies/{id}.
func (c *CinemaService) UpdateMovie(ctx context.Context, in models.MovieInput) error {
	if in.ID <= 0 {
		return fmt.Errorf("%w: movie id is required", shared.ErrMissingArgument)
	}
	return c.doRequest(ctx, request{
		method:   http.MethodPut,
		endpoint: fmt.Sprintf("/movies/%d", in.ID),
		body:     in,
		auth:     true,
		fallback: "Failed to edit movie",
	})
}

// DeleteMovie removes a movie. Requires an admin token.
//
// Calls DELETE /movies/{id}.
func (c *CinemaService) DeleteMovie(ctx context.Context, id int) error {
	return c.doRequest(ctx, request{
		method:   http.MethodDelete,
		endpoint: fmt.Sprintf("/movies/%d", id),
		auth:     true,
		fallback: "Failed to delete movie",
	})
}
