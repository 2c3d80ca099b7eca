package testing

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// RoleClaim is the claim URI the API uses for roles.
const RoleClaim = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"

var fakeSecret = []byte("marquee-test-secret")

// FakeUser is an account known to [FakeAPI].
type FakeUser struct {
	models.User
	Password string
}

// FakeAPI is an in-memory cinema API served over [httptest.Server].
//
// It speaks the same JSON as the real API: "$values" envelopes, bearer tokens and the
// error body shapes the client has to understand.
type FakeAPI struct {
	Server *httptest.Server

	mu          sync.Mutex
	movies      []models.Movie
	projections []models.Projection
	seats       map[int][]models.Seat
	types       []models.ProjectionType
	theaters    []models.Theater
	users       []FakeUser
	tickets     map[string][]models.Ticket
	requests    []string
	failNext    *fakeFailure
	nextID      int
}

type fakeFailure struct {
	status int
	body   string
}

// NewFakeAPI starts a seeded fake API that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{nextID: 100}
	f.seed(time.Now())
	f.Server = httptest.NewServer(f.routes())
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the API root, as configured in api.base_url.
func (f *FakeAPI) URL() string {
	return f.Server.URL + "/api"
}

// Requests returns "METHOD /path?query" for every request served so far.
func (f *FakeAPI) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.requests)
}

// LastRequest returns the most recent entry of [FakeAPI.Requests].
func (f *FakeAPI) LastRequest() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return ""
	}
	return f.requests[len(f.requests)-1]
}

// FailNext makes the next request answer with status and body verbatim.
func (f *FakeAPI) FailNext(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = &fakeFailure{status: status, body: body}
}

// Token issues a signed token for username, as the login endpoint would.
func (f *FakeAPI) Token(t *testing.T, username string) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.userByName(username)
	if !ok {
		t.Fatalf("unknown fake user %q", username)
	}
	return issueToken(u, time.Now().Add(time.Hour))
}

// Movies returns the stored movies, soft-deleted ones included.
func (f *FakeAPI) Movies() []models.Movie {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.movies)
}

// Projections returns the stored projections, soft-deleted ones included.
func (f *FakeAPI) Projections() []models.Projection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.projections)
}

// Users returns the stored accounts.
func (f *FakeAPI) Users() []FakeUser {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.users)
}

// TicketsOf returns the tickets owned by userID.
func (f *FakeAPI) TicketsOf(userID string) []models.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tickets[userID])
}

func (f *FakeAPI) seed(now time.Time) {
	at := func(d time.Duration) models.Time {
		return models.Time{Time: now.Add(d).Truncate(time.Minute)}
	}

	f.movies = []models.Movie{
		{ID: 1, Title: "Alien", Director: "Ridley Scott", Actors: "Sigourney Weaver", Genre: "Horror", Duration: 117, Distributor: "20th Century Fox", CountryOrigin: "USA", ReleaseYear: 1979, Description: "In space no one can hear you scream."},
		{ID: 2, Title: "Heat", Director: "Michael Mann", Actors: "Al Pacino, Robert De Niro", Genre: "Crime", Duration: 170, Distributor: "Warner Bros.", CountryOrigin: "USA", ReleaseYear: 1995, Description: "A group of professional bank robbers."},
		{ID: 3, Title: "Withdrawn", Genre: "Drama", Duration: 90, ReleaseYear: 2001, IsDeleted: true},
	}
	f.types = []models.ProjectionType{{ID: 1, Type: "2D"}, {ID: 2, Type: "3D"}}
	f.theaters = []models.Theater{{ID: 1, Type: "Standard", Name: "Hall 1"}, {ID: 2, Type: "IMAX", Name: "Hall 2"}}
	f.projections = []models.Projection{
		{ID: 1, MovieID: 1, MovieTitle: "Alien", ProjectionTypeID: 1, ProjectionType: "2D", TheaterID: 1, Theater: "Hall 1", DateTime: at(48 * time.Hour), Price: 8.5, UnsoldTicketsCount: 3},
		{ID: 2, MovieID: 2, MovieTitle: "Heat", ProjectionTypeID: 2, ProjectionType: "3D", TheaterID: 2, Theater: "Hall 2", DateTime: at(72 * time.Hour), Price: 10, UnsoldTicketsCount: 0},
		{ID: 3, MovieID: 1, MovieTitle: "Alien", ProjectionTypeID: 1, ProjectionType: "2D", TheaterID: 1, Theater: "Hall 1", DateTime: at(-48 * time.Hour), Price: 7, UnsoldTicketsCount: 4},
		{ID: 4, MovieID: 2, MovieTitle: "Heat", ProjectionTypeID: 1, ProjectionType: "2D", TheaterID: 1, Theater: "Hall 1", DateTime: at(24 * time.Hour), Price: 12, UnsoldTicketsCount: 2},
		{ID: 5, MovieID: 1, MovieTitle: "Alien", ProjectionTypeID: 2, ProjectionType: "3D", TheaterID: 2, Theater: "Hall 2", DateTime: at(96 * time.Hour), Price: 9, UnsoldTicketsCount: 4, IsDeleted: true},
	}

	f.seats = map[int][]models.Seat{}
	for _, p := range f.projections {
		seats := make([]models.Seat, 4)
		for i := range seats {
			seats[i] = models.Seat{ID: p.ID*10 + i + 1, Number: models.Label(strconv.Itoa(i + 1)), IsAvailable: i >= 4-p.UnsoldTicketsCount, Theater: p.Theater}
		}
		f.seats[p.ID] = seats
	}

	f.users = []FakeUser{
		{User: models.User{ID: "u-admin", Username: "admin", Email: "admin@marquee.test", Role: models.RoleAdmin}, Password: "admin123"},
		{User: models.User{ID: "u-ana", Username: "ana", Email: "ana@marquee.test", Role: models.RoleUser}, Password: "secret"},
		{User: models.User{ID: "u-bo", Username: "bo", Email: "bo@marquee.test", Role: models.RoleUser}, Password: "secret"},
	}
	f.tickets = map[string][]models.Ticket{
		"u-ana": {{ID: 1, ProjectionID: 1, ProjectionMovieTitle: "Alien", ProjectionDateTime: f.projections[0].DateTime, ProjectionType: "2D", Theater: "Hall 1", Seat: "1", Price: 8.5}},
	}
}

func issueToken(u FakeUser, exp time.Time) string {
	claims := jwt.MapClaims{
		"sub":         u.ID,
		"unique_name": u.Username,
		RoleClaim:     u.Role,
		"exp":         exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(fakeSecret)
	if err != nil {
		panic(err)
	}
	return token
}

func (f *FakeAPI) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/movies", f.listMovies)
	mux.HandleFunc("GET /api/movies/{id}", f.getMovie)
	mux.HandleFunc("POST /api/movies", f.admin(f.createMovie))
	mux.HandleFunc("PUT /api/movies/{id}", f.admin(f.updateMovie))
	mux.HandleFunc("DELETE /api/movies/{id}", f.admin(f.deleteMovie))

	mux.HandleFunc("GET /api/projections", f.listProjections)
	mux.HandleFunc("GET /api/projections/{id}", f.getProjection)
	mux.HandleFunc("GET /api/projections/{a}/{b}", f.projectionChildren)
	mux.HandleFunc("POST /api/projections", f.admin(f.createProjection))
	mux.HandleFunc("DELETE /api/projections/{id}", f.admin(f.deleteProjection))
	mux.HandleFunc("GET /api/projectiontypes", f.list(func() any { return f.types }))
	mux.HandleFunc("GET /api/theaters", f.list(func() any { return f.theaters }))

	mux.HandleFunc("POST /api/tickets/buy", f.user(f.buyTicket))
	mux.HandleFunc("GET /api/tickets/mytickets", f.user(f.myTickets))
	mux.HandleFunc("GET /api/tickets/usertickets/{userId}", f.admin(f.userTickets))

	mux.HandleFunc("POST /api/authentication/login", f.login)
	mux.HandleFunc("POST /api/authentication/register", f.register)
	mux.HandleFunc("GET /api/authentication/userinfo", f.user(f.userInfo))
	mux.HandleFunc("GET /api/authentication/userinfo/{userId}", f.user(f.userInfo))
	mux.HandleFunc("POST /api/authentication/change-password", f.user(f.changePassword))
	mux.HandleFunc("GET /api/authentication/all-users", f.admin(f.allUsers))
	mux.HandleFunc("DELETE /api/authentication/delete-user/{userId}", f.admin(f.deleteUser))
	mux.HandleFunc("POST /api/authentication/update-role", f.admin(f.updateRole))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		entry := r.Method + " " + r.URL.Path
		if r.URL.RawQuery != "" {
			entry += "?" + r.URL.RawQuery
		}
		f.requests = append(f.requests, entry)
		fail := f.failNext
		f.failNext = nil
		f.mu.Unlock()

		if fail != nil {
			w.WriteHeader(fail.status)
			w.Write([]byte(fail.body))
			return
		}
		mux.ServeHTTP(w, r)
	})
}
