package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/views"
)

type projectionRow struct {
	models.Projection
	Action views.Action
}

type sortLink struct {
	Label     string
	Href      string
	Indicator string
}

type pageLink struct {
	Number  int
	Href    string
	Current bool
}

type projectionsData struct {
	Query      models.ProjectionQuery
	Page       views.Page[projectionRow]
	SortLinks  []sortLink
	PageLinks  []pageLink
	Types      []models.ProjectionType
	Theaters   []models.Theater
	Movies     []models.Movie
	ShowAction bool
}

var projectionSortLabels = map[string]string{
	models.ProjectionSortDate:  "Date",
	models.ProjectionSortPrice: "Price",
	models.ProjectionSortTitle: "Title",
}

// withParams returns path?query with the given keys replaced.
func withParams(path string, query url.Values, kv ...string) string {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			q.Del(kv[i])
		} else {
			q.Set(kv[i], kv[i+1])
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func pathID(r *http.Request, name string) (int, error) {
	raw := r.PathValue(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

func (a *App) handleProjections(w http.ResponseWriter, r *http.Request) {
	s := a.session(r)
	ctx := r.Context()
	client := a.client(s)
	params := r.URL.Query()
	q := models.ProjectionQueryFromValues(params)

	projections, err := client.Projections(ctx, q)
	if err != nil {
		a.fail(w, r, s, err)
		return
	}

	now := a.now()
	rows := make([]projectionRow, 0, len(projections))
	for _, p := range models.ActiveProjections(projections) {
		rows = append(rows, projectionRow{Projection: p, Action: views.ProjectionAction(s, p, now)})
	}

	number, _ := strconv.Atoi(params.Get("page"))
	data := projectionsData{
		Query:      q,
		Page:       views.Paginate(rows, number, a.perPage),
		ShowAction: views.ShowActionColumn(s),
	}

	current := views.ProjectionSort{Field: q.SortBy, Descending: q.SortDescending}
	for _, field := range models.ProjectionSortFields {
		next := current.Toggle(field)
		data.SortLinks = append(data.SortLinks, sortLink{
			Label:     projectionSortLabels[field],
			Href:      withParams("/", params, "sortBy", next.Field, "sortDescending", strconv.FormatBool(next.Descending), "page", ""),
			Indicator: views.Indicator(current.Field == field, current.Descending),
		})
	}
	for _, n := range data.Page.Numbers {
		data.PageLinks = append(data.PageLinks, pageLink{Number: n, Href: withParams("/", params, "page", strconv.Itoa(n)), Current: n == data.Page.Number})
	}

	a.loadLookups(ctx, client, &data.Types, &data.Theaters)
	if s.IsAdmin() {
		if movies, err := client.Movies(ctx, models.MovieQuery{}); err != nil {
			a.logger.Warn("failed to fetch movies", "err", err)
		} else {
			data.Movies = models.ActiveMovies(movies)
		}
	}

	a.render(w, r, s, view{name: "projections.html", title: "Projections", data: data})
}

// loadLookups fills the projection type and theater dropdowns; failures leave them empty.
func (a *App) loadLookups(ctx context.Context, client services.Cinema, types *[]models.ProjectionType, theaters *[]models.Theater) {
	if t, err := client.ProjectionTypes(ctx); err != nil {
		a.logger.Warn("failed to fetch projection types", "err", err)
	} else {
		*types = t
	}
	if t, err := client.Theaters(ctx); err != nil {
		a.logger.Warn("failed to fetch theaters", "err", err)
	} else {
		*theaters = t
	}
}

func (a *App) handleAddProjection(w http.ResponseWriter, r *http.Request, s auth.Session) {
	form := views.ProjectionForm{
		MovieID:          r.FormValue("movieId"),
		ProjectionTypeID: r.FormValue("projectionTypeId"),
		TheaterID:        r.FormValue("theaterId"),
		DateTime:         r.FormValue("dateTime"),
		Price:            r.FormValue("price"),
	}
	in, err := form.Validate()
	if err != nil {
		a.fail(w, r, s, err)
		return
	}
	if err := a.client(s).CreateProjection(r.Context(), in); err != nil {
		a.fail(w, r, s, err)
		return
	}
	a.redirect(w, r, "/", "Projection added")
}

func (a *App) handleDeleteProjection(w http.ResponseWriter, r *http.Request, s auth.Session) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, s, err)
		return
	}
	msg, err := a.client(s).DeleteProjection(r.Context(), id)
	if err != nil {
		a.fail(w, r, s, err)
		return
	}
	a.redirect(w, r, "/", msg)
}

type projectionData struct {
	Projection models.Projection
	Seats      [][]models.Seat
	Hall       string
	Selected   int
	CanBuy     bool
	Receipt    *views.Receipt
}

func (a *App) loadProjection(ctx context.Context, s auth.Session, id int) (projectionData, []models.Seat, error) {
	client := a.client(s)
	p, err := client.Projection(ctx, id)
	if err != nil {
		return projectionData{}, nil, err
	}
	seats, err := client.Seats(ctx, id)
	if err != nil {
		return projectionData{}, nil, err
	}
	return projectionData{
		Projection: *p,
		Seats:      views.SeatGrid(seats, a.seatWidth),
		Hall:       views.SeatHall(seats),
		CanBuy:     s.IsUser() && p.Bookable(a.now()),
	}, seats, nil
}

func (a *App) handleProjection(w http.ResponseWriter, r *http.Request) {
	s := a.session(r)
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, s, err)
		return
	}
	data, _, err := a.loadProjection(r.Context(), s, id)
	if err != nil {
		a.fail(w, r, s, err)
		return
	}
	a.render(w, r, s, view{name: "projection.html", title: data.Projection.MovieTitle, data: data})
}

func (a *App) handleBuyTicket(w http.ResponseWriter, r *http.Request, s auth.Session) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, s, err)
		return
	}
	seatID, err := views.SeatChoice(r.FormValue("seatId"))
	if err != nil {
		a.fail(w, r, s, err)
		return
	}

	if err := a.client(s).BuyTicket(r.Context(), models.TicketPurchase{ProjectionID: id, SeatID: seatID}); err != nil {
		a.fail(w, r, s, err)
		return
	}

	data, seats, err := a.loadProjection(r.Context(), s, id)
	if err != nil {
		a.fail(w, r, s, err)
		return
	}
	receipt := views.NewReceipt(data.Projection, seats, seatID)
	data.Receipt = &receipt
	data.Selected = seatID
	a.render(w, r, s, view{name: "projection.html", title: data.Projection.MovieTitle, data: data})
}
