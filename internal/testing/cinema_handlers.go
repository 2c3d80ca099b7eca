package testing

import (
	"cmp"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

type authedHandler func(w http.ResponseWriter, r *http.Request, u FakeUser)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeValues wraps items the way the API's reference-preserving serializer does.
func writeValues(w http.ResponseWriter, items any) {
	writeJSON(w, http.StatusOK, map[string]any{"$id": "1", "$values": items})
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(text))
}

func (f *FakeAPI) userByName(name string) (FakeUser, bool) {
	for _, u := range f.users {
		if strings.EqualFold(u.Username, name) {
			return u, true
		}
	}
	return FakeUser{}, false
}

func (f *FakeAPI) userByID(id string) (FakeUser, int, bool) {
	for i, u := range f.users {
		if u.ID == id {
			return u, i, true
		}
	}
	return FakeUser{}, -1, false
}

func (f *FakeAPI) authenticate(r *http.Request) (FakeUser, bool) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return FakeUser{}, false
	}

	token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return fakeSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return FakeUser{}, false
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return FakeUser{}, false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	u, _, ok := f.userByID(sub)
	return u, ok
}

func (f *FakeAPI) user(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := f.authenticate(r)
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next(w, r, u)
	}
}

func (f *FakeAPI) admin(next authedHandler) http.HandlerFunc {
	return f.user(func(w http.ResponseWriter, r *http.Request, u FakeUser) {
		if u.Role != models.RoleAdmin {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next(w, r, u)
	})
}

func (f *FakeAPI) list(get func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeValues(w, get())
	}
}

func pathID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	return id, err == nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (f *FakeAPI) listMovies(w http.ResponseWriter, r *http.Request) {
	q := models.MovieQueryFromValues(r.URL.Query())

	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Movie
	for _, m := range f.movies {
		if q.Title != "" && !containsFold(m.Title, q.Title) {
			continue
		}
		if q.Genre != "" && !containsFold(m.Genre, q.Genre) {
			continue
		}
		if q.Distributor != "" && !containsFold(m.Distributor, q.Distributor) {
			continue
		}
		if q.Country != "" && !containsFold(m.CountryOrigin, q.Country) {
			continue
		}
		if from, err := strconv.Atoi(q.YearFrom); err == nil && m.ReleaseYear < from {
			continue
		}
		if to, err := strconv.Atoi(q.YearTo); err == nil && m.ReleaseYear > to {
			continue
		}
		if from, err := strconv.Atoi(q.DurationFrom); err == nil && m.Duration < from {
			continue
		}
		if to, err := strconv.Atoi(q.DurationTo); err == nil && m.Duration > to {
			continue
		}
		out = append(out, m)
	}

	field, desc := strings.CutSuffix(q.SortOrder, "_desc")
	slices.SortStableFunc(out, func(a, b models.Movie) int {
		var c int
		switch field {
		case models.MovieSortGenre:
			c = cmp.Compare(a.Genre, b.Genre)
		case models.MovieSortDuration:
			c = cmp.Compare(a.Duration, b.Duration)
		case models.MovieSortDistributor:
			c = cmp.Compare(a.Distributor, b.Distributor)
		case models.MovieSortCountry:
			c = cmp.Compare(a.CountryOrigin, b.CountryOrigin)
		case models.MovieSortYear:
			c = cmp.Compare(a.ReleaseYear, b.ReleaseYear)
		default:
			c = cmp.Compare(a.Title, b.Title)
		}
		if desc {
			return -c
		}
		return c
	})

	writeValues(w, out)
}

func (f *FakeAPI) getMovie(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r, "id")

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.movies {
		if m.ID == id {
			writeJSON(w, http.StatusOK, m)
			return
		}
	}
	writeText(w, http.StatusNotFound, "Movie not found")
}

func (f *FakeAPI) decodeMovie(w http.ResponseWriter, r *http.Request) (models.MovieInput, bool) {
	var in models.MovieInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"title": "Invalid movie", "errors": map[string][]string{"body": {err.Error()}}})
		return in, false
	}
	if strings.TrimSpace(in.Title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"title":  "One or more validation errors occurred.",
			"errors": map[string][]string{"Title": {"The Title field is required."}},
		})
		return in, false
	}
	return in, true
}

func movieFromInput(id int, in models.MovieInput) models.Movie {
	return models.Movie{
		ID: id, Title: in.Title, Director: in.Director, Actors: in.Actors, Genre: in.Genre,
		Duration: in.Duration, Distributor: in.Distributor, CountryOrigin: in.CountryOrigin,
		ReleaseYear: in.ReleaseYear, Description: in.Description,
	}
}

func (f *FakeAPI) createMovie(w http.ResponseWriter, r *http.Request, _ FakeUser) {
	in, ok := f.decodeMovie(w, r)
	if !ok {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m := movieFromInput(f.nextID, in)
	f.movies = append(f.movies, m)
	writeJSON(w, http.StatusCreated, m)
}

func (f *FakeAPI) updateMovie(w http.ResponseWriter, r *http.Request, _ FakeUser) {
	id, _ := pathID(r, "id")
	in, ok := f.decodeMovie(w, r)
	if !ok {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.movies {
		if m.ID == id {
			f.movies[i] = movieFromInput(id, in)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeText(w, http.StatusNotFound, "Movie not found")
}

func (f *FakeAPI) deleteMovie(w http.ResponseWriter, r *http.Request, _ FakeUser) {
	id, _ := pathID(r, "id")

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.movies {
		if m.ID == id {
			f.movies[i].IsDeleted = true
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeText(w, http.StatusNotFound, "Movie not found")
}

func (f *FakeAPI) listProjections(w http.ResponseWriter, r *http.Request) {
	q := models.ProjectionQueryFromValues(r.URL.Query())

	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Projection
	for _, p := range f.projections {
		if q.MovieTitle != "" && !containsFold(p.MovieTitle, q.MovieTitle) {
			continue
		}
		if q.TheaterID != "" && strconv.Itoa(p.TheaterID) != q.TheaterID {
			continue
		}
		if q.ProjectionTypeID != "" && strconv.Itoa(p.ProjectionTypeID) != q.ProjectionTypeID {
			continue
		}
		if from, err := strconv.ParseFloat(q.PriceFrom, 64); err == nil && p.Price < from {
			continue
		}
		if to, err := strconv.ParseFloat(q.PriceTo, 64); err == nil && p.Price > to {
			continue
		}
		if from, err := time.ParseInLocation(time.DateOnly, q.DateFrom, time.Local); err == nil && p.DateTime.Before(from) {
			continue
		}
		if to, err := time.ParseInLocation(time.DateOnly, q.DateTo, time.Local); err == nil && !p.DateTime.Before(to.AddDate(0, 0, 1)) {
			continue
		}
		out = append(out, p)
	}

	slices.SortStableFunc(out, func(a, b models.Projection) int {
		var c int
		switch q.SortBy {
		case models.ProjectionSortPrice:
			c = cmp.Compare(a.Price, b.Price)
		case models.ProjectionSortTitle:
			c = cmp.Compare(a.MovieTitle, b.MovieTitle)
		default:
			c = a.DateTime.Compare(b.DateTime.Time)
		}
		if q.SortDescending {
			return -c
		}
		return c
	})

	writeValues(w, out)
}

func (f *FakeAPI) getProjection(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r, "id")

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projections {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeText(w, http.StatusNotFound, "Projection not found")
}

// projectionChildren serves /projections/{id}/seats and /projections/movies/{movieId},
// which a single ServeMux cannot register side by side.
func (f *FakeAPI) projectionChildren(w http.ResponseWriter, r *http.Request) {
	a, b := r.PathValue("a"), r.PathValue("b")
	switch {
	case a == "movies":
		r.SetPathValue("movieId", b)
		f.user(f.movieProjections)(w, r)
	case b == "seats":
		r.SetPathValue("id", a)
		f.listSeats(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *FakeAPI) listSeats(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r, "id")

	f.mu.Lock()
	defer f.mu.Unlock()
	seats, ok := f.seats[id]
	if !ok {
		writeText(w, http.StatusNotFound, "Projection not found")
		return
	}
	writeValues(w, seats)
}

func (f *FakeAPI) movieProjections(w http.ResponseWriter, r *http.Request, _ FakeUser) {
	id, _ := pathID(r, "movieId")

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Projection
	for _, p := range f.projections {
		if p.MovieID == id {
			out = append(out, p)
		}
	}
	writeValues(w, out)
}

func (f *FakeAPI) createProjection(w http.ResponseWriter, r *http.Request, _ FakeUser) {
	var in models.ProjectionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"Message": "Invalid projection", "Errors": []string{err.Error()}})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []string
	if in.Price <= 0 {
		errs = append(errs, "Price must be greater than zero.")
	}
	var movie *models.Movie
	for i := range f.movies {
		if f.movies[i].ID == in.MovieID && !f.movies[i].IsDeleted {
			movie = &f.movies[i]
		}
	}
	if movie == nil {
		errs = append(errs, fmt.Sprintf("Movie %d does not exist.", in.MovieID))
	}
	typ := slices.IndexFunc(f.types, func(t models.ProjectionType) bool { return t.ID == in.ProjectionTypeID })
	theater := slices.IndexFunc(f.theaters, func(t models.Theater) bool { return t.ID == in.TheaterID })
	if typ < 0 {
		errs = append(errs, "Unknown projection type.")
	}
	if theater < 0 {
		errs = append(errs, "Unknown theater.")
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"Message": "Validation failed", "Errors": errs})
		return
	}

	f.nextID++
	p := models.Projection{
		ID: f.nextID, MovieID: movie.ID, MovieTitle: movie.Title,
		ProjectionTypeID: in.ProjectionTypeID, ProjectionType: f.types[typ].Type,
		TheaterID: in.TheaterID, Theater: f.theaters[theater].Name,
		DateTime: in.DateTime, Price: in.Price, UnsoldTicketsCount: 4,
	}
	f.projections = append(f.projections, p)

	seats := make([]models.Seat, 4)
	for i := range seats {
		seats[i] = models.Seat{ID: p.ID*10 + i + 1, Number: models.Label(strconv.Itoa(i + 1)), IsAvailable: true, Theater: p.Theater}
	}
	f.seats[p.ID] = seats

	writeJSON(w, http.StatusCreated, p)
}

func (f *FakeAPI) deleteProjection(w http.ResponseWriter, r *http.Request, _ FakeUser) {
	id, _ := pathID(r, "id")

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.projections {
		if p.ID == id {
			f.projections[i].IsDeleted = true
			writeJSON(w, http.StatusOK, models.Message{Message: "Projection deleted successfully."})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, models.Message{Message: "Projection not found."})
}

func (f *FakeAPI) buyTicket(w http.ResponseWriter, r *http.Request, u FakeUser) {
	var purchase models.TicketPurchase
	if err := json.NewDecoder(r.Body).Decode(&purchase); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"title": "Invalid purchase", "errors": map[string][]string{"body": {err.Error()}}})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	pi := slices.IndexFunc(f.projections, func(p models.Projection) bool { return p.ID == purchase.ProjectionID })
	if pi < 0 {
		writeText(w, http.StatusNotFound, "Projection not found")
		return
	}
	p := &f.projections[pi]

	seats := f.seats[p.ID]
	si := slices.IndexFunc(seats, func(s models.Seat) bool { return s.ID == purchase.SeatID })
	switch {
	case si < 0:
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"title":  "One or more validation errors occurred.",
			"errors": map[string][]string{"SeatId": {"Seat does not belong to this projection."}},
		})
		return
	case !seats[si].IsAvailable:
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"title":  "One or more validation errors occurred.",
			"errors": map[string][]string{"SeatId": {"Seat is already taken."}},
		})
		return
	case p.Ended(time.Now()):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"title":  "One or more validation errors occurred.",
			"errors": map[string][]string{"ProjectionId": {"Projection has ended."}},
		})
		return
	}

	seats[si].IsAvailable = false
	p.UnsoldTicketsCount--

	f.nextID++
	t := models.Ticket{
		ID: f.nextID, ProjectionID: p.ID, ProjectionMovieTitle: p.MovieTitle,
		ProjectionDateTime: p.DateTime, ProjectionType: p.ProjectionType,
		Theater: p.Theater, Seat: seats[si].Number, Price: p.Price,
	}
	f.tickets[u.ID] = append(f.tickets[u.ID], t)
	writeJSON(w, http.StatusOK, t)
}

func (f *FakeAPI) myTickets(w http.ResponseWriter, _ *http.Request, u FakeUser) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"values": map[string]any{"$id": "2", "$values": f.tickets[u.ID]}})
}

func (f *FakeAPI) userTickets(w http.ResponseWriter, r *http.Request, _ FakeUser) {
	id := r.PathValue("userId")

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, _, ok := f.userByID(id); !ok {
		writeText(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"values": map[string]any{"$id": "2", "$values": f.tickets[id]}})
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.userByName(req.Username)
	if !ok || u.Password != req.Password {
		writeText(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token:    issueToken(u, time.Now().Add(time.Hour)),
		Role:     u.Role,
		Username: u.Username,
	})
}

func (f *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, models.Message{Message: "Username and password are required"})
		return
	}
	if _, exists := f.userByName(req.Username); exists {
		writeJSON(w, http.StatusBadRequest, models.Message{Message: "Username already exists"})
		return
	}
	role := models.NormalizeRole(req.Role)
	if role == "" {
		role = models.RoleUser
	}

	f.nextID++
	u := FakeUser{User: models.User{ID: fmt.Sprintf("u-%d", f.nextID), Username: req.Username, Email: req.Email, Role: role}, Password: req.Password}
	f.users = append(f.users, u)
	writeJSON(w, http.StatusOK, models.Message{Message: "User registered successfully"})
}

func (f *FakeAPI) userInfo(w http.ResponseWriter, r *http.Request, u FakeUser) {
	id := r.PathValue("userId")
	if id == "" {
		writeJSON(w, http.StatusOK, u.User)
		return
	}
	if u.Role != models.RoleAdmin && id != u.ID {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	other, _, ok := f.userByID(id)
	if !ok {
		writeText(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, other.User)
}

func (f *FakeAPI) changePassword(w http.ResponseWriter, r *http.Request, u FakeUser) {
	var req models.ChangePasswordRequest
	json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()
	_, i, _ := f.userByID(u.ID)
	switch {
	case req.Username != "" && !strings.EqualFold(req.Username, u.Username):
		writeJSON(w, http.StatusForbidden, models.Message{Message: "You can only change your own password"})
	case f.users[i].Password != req.CurrentPassword:
		writeJSON(w, http.StatusBadRequest, models.Message{Message: "Current password is incorrect"})
	case len(req.NewPassword) < 6:
		writeJSON(w, http.StatusBadRequest, models.Message{Message: "Password must be at least 6 characters"})
	default:
		f.users[i].Password = req.NewPassword
		writeJSON(w, http.StatusOK, models.Message{Message: "Password changed successfully"})
	}
}

func (f *FakeAPI) allUsers(w http.ResponseWriter, r *http.Request, _ FakeUser) {
	q := models.UserQueryFromValues(r.URL.Query())

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		if q.Username != "" && !containsFold(u.Username, q.Username) {
			continue
		}
		out = append(out, u.User)
	}
	slices.SortStableFunc(out, func(a, b models.User) int {
		c := cmp.Compare(a.Username, b.Username)
		if q.SortBy == models.UserSortRole {
			c = cmp.Or(cmp.Compare(a.Role, b.Role), c)
		}
		if q.SortDirection == models.SortDesc {
			return -c
		}
		return c
	})
	writeValues(w, out)
}

func (f *FakeAPI) deleteUser(w http.ResponseWriter, r *http.Request, caller FakeUser) {
	id := r.PathValue("userId")

	f.mu.Lock()
	defer f.mu.Unlock()
	_, i, ok := f.userByID(id)
	switch {
	case !ok:
		writeText(w, http.StatusNotFound, "User not found")
	case id == caller.ID:
		writeJSON(w, http.StatusBadRequest, models.Message{Message: "You cannot delete your own account"})
	default:
		f.users = slices.Delete(f.users, i, i+1)
		delete(f.tickets, id)
		writeJSON(w, http.StatusOK, models.Message{Message: "User deleted successfully"})
	}
}

func (f *FakeAPI) updateRole(w http.ResponseWriter, r *http.Request, _ FakeUser) {
	var req models.UpdateRoleRequest
	json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()
	u, _ := f.userByName(req.Username)
	_, i, ok := f.userByID(u.ID)
	if !ok {
		writeJSON(w, http.StatusNotFound, models.Message{Message: "User not found"})
		return
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
		writeJSON(w, http.StatusBadRequest, models.Message{Message: "Invalid role"})
		return
	}
	f.users[i].Role = req.Role
	writeJSON(w, http.StatusOK, models.Message{Message: "Role updated successfully"})
}
