package views

import (
	"slices"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
)

// ToggleMovieSort returns the sort order after clicking field's column header: the same field
// again sorts descending ("title" -> "title_desc"), anything else sorts field ascending.
func ToggleMovieSort(current, field string) string {
	if current == field {
		return field + "_desc"
	}
	return field
}

// MovieSortState splits a sort order into its field and direction.
func MovieSortState(order string) (field string, descending bool) {
	return strings.CutSuffix(order, "_desc")
}

// ValidMovieSort reports whether order names a known movie sort.
func ValidMovieSort(order string) bool {
	field, _ := MovieSortState(order)
	return order == "" || slices.Contains(models.MovieSortFields, field)
}

// ProjectionSort is the sort state of the projections table.
type ProjectionSort struct {
	Field      string
	Descending bool
}

// Toggle returns the state after picking field: the same field flips the direction,
// a new field sorts ascending.
func (s ProjectionSort) Toggle(field string) ProjectionSort {
	if s.Field == field {
		return ProjectionSort{Field: field, Descending: !s.Descending}
	}
	return ProjectionSort{Field: field}
}

// Apply writes the state into q.
func (s ProjectionSort) Apply(q models.ProjectionQuery) models.ProjectionQuery {
	q.SortBy = s.Field
	q.SortDescending = s.Descending
	return q
}

// Indicator is the arrow shown next to a sorted column header.
func Indicator(sorted, descending bool) string {
	switch {
	case !sorted:
		return ""
	case descending:
		return "▼"
	default:
		return "▲"
	}
}
