package web

import (
	"net/http"
	"strconv"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/views"
)

var movieSortLabels = map[string]string{
	models.MovieSortTitle:       "Title",
	models.MovieSortGenre:       "Genre",
	models.MovieSortDuration:    "Duration",
	models.MovieSortDistributor: "Distributor",
	models.MovieSortCountry:     "Country",
	models.MovieSortYear:        "Year",
}

type moviesData struct {
	Query     models.MovieQuery
	Movies    []models.Movie
	SortLinks []sortLink
	Form      views.MovieForm
}

func (a *App) handleMovies(w http.ResponseWriter, r *http.Request) {
	s := a.session(r)
	params := r.URL.Query()
	q := models.MovieQueryFromValues(params)
	if !views.ValidMovieSort(q.SortOrder) {
		q.SortOrder = ""
	}

	movies, err := a.client(s).Movies(r.Context(), q)
	if err != nil {
		a.fail(w, r, s, err)
		return
	}

	data := moviesData{Query: q, Movies: models.ActiveMovies(movies)}
	currentField, desc := views.MovieSortState(q.SortOrder)
	for _, field := range models.MovieSortFields {
		data.SortLinks = append(data.SortLinks, sortLink{
			Label:     movieSortLabels[field],
			Href:      withParams("/movies", params, "sortOrder", views.ToggleMovieSort(q.SortOrder, field)),
			Indicator: views.Indicator(currentField == field, desc),
		})
	}

	a.render(w, r, s, view{name: "movies.html", title: "Movies", data: data})
}

func movieFormFrom(r *http.Request, id string) views.MovieForm {
	return views.MovieForm{
		ID:            id,
		Title:         r.FormValue("title"),
		Director:      r.FormValue("director"),
		Actors:        r.FormValue("actors"),
		Genre:         r.FormValue("genre"),
		Duration:      r.FormValue("duration"),
		Distributor:   r.FormValue("distributor"),
		CountryOrigin: r.FormValue("countryOrigin"),
		ReleaseYear:   r.FormValue("releaseYear"),
		Description:   r.FormValue("description"),
	}
}

func (a *App) handleAddMovie(w http.ResponseWriter, r *http.Request, s auth.Session) {
	in, err := movieFormFrom(r, "").Validate()
	if err != nil {
		a.fail(w, r, s, err)
		return
	}
	if err := a.client(s).CreateMovie(r.Context(), in); err != nil {
		a.fail(w, r, s, err)
		return
	}
	a.redirect(w, r, "/movies", "Movie added")
}

func (a *App) handleEditMovieForm(w http.ResponseWriter, r *http.Request, s auth.Session) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, s, err)
		return
	}
	m, err := a.client(s).Movie(r.Context(), id)
	if err != nil {
		a.fail(w, r, s, err)
		return
	}
	a.render(w, r, s, view{name: "movie_form.html", title: "Edit Movie", data: views.MovieFormFrom(*m)})
}

func (a *App) handleEditMovie(w http.ResponseWriter, r *http.Request, s auth.Session) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, s, err)
		return
	}
	form := movieFormFrom(r, strconv.Itoa(id))
	in, err := form.Validate()
	if err != nil {
		a.render(w, r, s, view{status: http.StatusBadRequest, name: "movie_form.html", title: "Edit Movie", err: err.Error(), data: form})
		return
	}
	if err := a.client(s).UpdateMovie(r.Context(), in); err != nil {
		a.render(w, r, s, view{status: errorStatus(err), name: "movie_form.html", title: "Edit Movie", err: err.Error(), data: form})
		return
	}
	a.redirect(w, r, "/movies", "Movie updated")
}

func (a *App) handleDeleteMovie(w http.ResponseWriter, r *http.Request, s auth.Session) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, s, err)
		return
	}
	if err := a.client(s).DeleteMovie(r.Context(), id); err != nil {
		a.fail(w, r, s, err)
		return
	}
	a.redirect(w, r, "/movies", "Movie deleted")
}

func (a *App) handleMovie(w http.ResponseWriter, r *http.Request) {
	s := a.session(r)
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, s, err)
		return
	}
	m, err := a.client(s).Movie(r.Context(), id)
	if err != nil {
		a.fail(w, r, s, err)
		return
	}
	a.render(w, r, s, view{name: "movie.html", title: m.Title, data: m})
}

type movieProjectionRow struct {
	models.Projection
	CanBuy bool
}

func (a *App) handleMovieProjections(w http.ResponseWriter, r *http.Request, s auth.Session) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, s, err)
		return
	}
	projections, err := a.client(s).MovieProjections(r.Context(), id)
	if err != nil {
		a.fail(w, r, s, err)
		return
	}

	now := a.now()
	var rows []movieProjectionRow
	for _, p := range models.ActiveProjections(projections) {
		rows = append(rows, movieProjectionRow{Projection: p, CanBuy: p.Bookable(now)})
	}
	a.render(w, r, s, view{name: "movie_projections.html", title: "Projections", data: rows})
}
