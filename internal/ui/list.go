package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

var (
	_ list.Item = projectionItem{}
	_ list.Item = movieItem{}
)

// projectionItem wraps [models.Projection] to implement [list.Item].
type projectionItem struct {
	projection models.Projection
	now        time.Time
}

func (i projectionItem) FilterValue() string { return i.projection.MovieTitle }
func (i projectionItem) Title() string       { return i.projection.MovieTitle }
func (i projectionItem) Description() string {
	p := i.projection
	desc := fmt.Sprintf("%s • %s • %s • %s", shared.FormatDateTime(p.DateTime.Time), p.ProjectionType, p.Theater, shared.FormatPrice(p.Price))
	switch {
	case p.Ended(i.now):
		return desc + " • Projection has ended"
	case p.SoldOut():
		return desc + " • No tickets available"
	default:
		return fmt.Sprintf("%s • %d left", desc, p.UnsoldTicketsCount)
	}
}

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie models.Movie
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string       { return i.movie.Title }
func (i movieItem) Description() string {
	m := i.movie
	desc := fmt.Sprintf("%d • %s • %d min", m.ReleaseYear, m.Genre, m.Duration)
	if m.Director != "" {
		desc = fmt.Sprintf("%s • %s", desc, m.Director)
	}
	return desc
}
