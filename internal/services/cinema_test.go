package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	tu "github.com/desertthunder/marquee/internal/testing"
)

func TestCinemaService(t *testing.T) {
	ctx := context.Background()

	t.Run("New", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			c := NewCinemaService("", nil, nil)
			if c.BaseURL() != DefaultBaseURL {
				t.Errorf("expected %s, got %s", DefaultBaseURL, c.BaseURL())
			}
			if c.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient")
			}
		})

		t.Run("From Config", func(t *testing.T) {
			cfg := shared.APIConfig{BaseURL: "https://cinema.test/api/", TimeoutSeconds: 3, InsecureSkipVerify: true, RateLimit: 5}
			c := NewCinemaServiceFromConfig(cfg)

			if c.BaseURL() != "https://cinema.test/api" {
				t.Errorf("unexpected base URL %s", c.BaseURL())
			}
			if c.httpClient.Timeout != 3*time.Second {
				t.Errorf("expected 3s timeout, got %v", c.httpClient.Timeout)
			}
			tr, ok := c.httpClient.Transport.(*http.Transport)
			if !ok || tr.TLSClientConfig == nil || !tr.TLSClientConfig.InsecureSkipVerify {
				t.Error("expected TLS verification to be skipped")
			}
			if c.limiter == nil || c.limiter.Burst() != 5 {
				t.Error("expected a limiter with burst 5")
			}
		})
	})

	t.Run("Movies", func(t *testing.T) {
		api := tu.NewFakeAPI(t)
		c := NewCinemaService(api.URL(), nil, nil)

		t.Run("Decodes Envelope And Sends Filters", func(t *testing.T) {
			movies, err := c.Movies(ctx, models.MovieQuery{Genre: "horror", SortOrder: "title_desc"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(movies) != 1 || movies[0].Title != "Alien" {
				t.Errorf("unexpected movies %+v", movies)
			}
			last := api.LastRequest()
			if !strings.Contains(last, "genreFilter=horror") || !strings.Contains(last, "sortOrder=title_desc") {
				t.Errorf("unexpected request %s", last)
			}
			if strings.Contains(last, "titleFilter") {
				t.Errorf("empty filters should be omitted: %s", last)
			}
		})

		t.Run("Includes Soft Deleted Rows", func(t *testing.T) {
			movies, err := c.Movies(ctx, models.MovieQuery{})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(movies) != 3 || len(models.ActiveMovies(movies)) != 2 {
				t.Errorf("expected 3 rows with 2 active, got %+v", movies)
			}
		})

		t.Run("Not Found Uses Plain Text Body", func(t *testing.T) {
			_, err := c.Movie(ctx, 999)
			if !errors.Is(err, shared.ErrNotFound) || !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected not found API error, got %v", err)
			}
			if err.Error() != "Movie not found" {
				t.Errorf("unexpected message %q", err.Error())
			}
		})

		t.Run("Create Requires A Token", func(t *testing.T) {
			before := len(api.Requests())
			err := c.CreateMovie(ctx, models.MovieInput{Title: "Solaris"})
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Fatalf("expected ErrNotAuthenticated, got %v", err)
			}
			if len(api.Requests()) != before {
				t.Error("no request should be sent without a token")
			}
		})

		t.Run("Create Update And Delete As Admin", func(t *testing.T) {
			admin := c.Authorized(api.Token(t, "admin"))

			if err := admin.CreateMovie(ctx, models.MovieInput{ID: 42, Title: "Solaris", Duration: 167}); err != nil {
				t.Fatalf("CreateMovie: %v", err)
			}
			all := api.Movies()
			created := all[len(all)-1]
			if created.Title != "Solaris" || created.ID == 42 {
				t.Errorf("unexpected created movie %+v", created)
			}

			in := created.Input()
			in.Genre = "Sci-Fi"
			if err := admin.UpdateMovie(ctx, in); err != nil {
				t.Fatalf("UpdateMovie: %v", err)
			}
			if err := admin.DeleteMovie(ctx, created.ID); err != nil {
				t.Fatalf("DeleteMovie: %v", err)
			}

			all = api.Movies()
			last := all[len(all)-1]
			if last.Genre != "Sci-Fi" || !last.IsDeleted {
				t.Errorf("expected updated and soft deleted movie, got %+v", last)
			}
		})

		t.Run("Update Without Id", func(t *testing.T) {
			err := c.Authorized("tok").UpdateMovie(ctx, models.MovieInput{Title: "x"})
			if !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})

		t.Run("Validation Errors Are Flattened", func(t *testing.T) {
			err := c.Authorized(api.Token(t, "admin")).CreateMovie(ctx, models.MovieInput{})
			if err == nil || err.Error() != "One or more validation errors occurred.: The Title field is required." {
				t.Errorf("unexpected error %v", err)
			}
		})

		t.Run("Non Admin Is Forbidden", func(t *testing.T) {
			err := c.Authorized(api.Token(t, "ana")).DeleteMovie(ctx, 1)
			if !errors.Is(err, shared.ErrForbidden) {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}
			if err.Error() != "Failed to delete movie" {
				t.Errorf("expected default message, got %q", err.Error())
			}
		})
	})

	t.Run("Projections", func(t *testing.T) {
		api := tu.NewFakeAPI(t)
		c := NewCinemaService(api.URL(), nil, nil)
		admin := c.Authorized(api.Token(t, "admin"))

		t.Run("Always Sends Sort Direction", func(t *testing.T) {
			projections, err := c.Projections(ctx, models.ProjectionQuery{SortBy: models.ProjectionSortPrice})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(projections) != 5 || projections[0].Price != 7 {
				t.Errorf("expected price ascending, got %+v", projections)
			}
			if !strings.Contains(api.LastRequest(), "sortDescending=false") {
				t.Errorf("unexpected request %s", api.LastRequest())
			}
		})

		t.Run("Detail And Seats", func(t *testing.T) {
			p, err := c.Projection(ctx, 1)
			if err != nil {
				t.Fatalf("Projection: %v", err)
			}
			if p.MovieTitle != "Alien" || p.DateTime.IsZero() {
				t.Errorf("unexpected projection %+v", p)
			}

			seats, err := c.Seats(ctx, 1)
			if err != nil {
				t.Fatalf("Seats: %v", err)
			}
			if len(seats) != 4 || models.AvailableSeats(seats) != 3 {
				t.Errorf("unexpected seats %+v", seats)
			}
		})

		t.Run("Movie Projections Need A Token", func(t *testing.T) {
			if _, err := c.MovieProjections(ctx, 1); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}

			projections, err := c.Authorized(api.Token(t, "ana")).MovieProjections(ctx, 1)
			if err != nil {
				t.Fatalf("MovieProjections: %v", err)
			}
			if len(projections) != 3 {
				t.Errorf("expected 3 projections of movie 1, got %d", len(projections))
			}
		})

		t.Run("Create Reports Message And Errors", func(t *testing.T) {
			err := admin.CreateProjection(ctx, models.ProjectionInput{MovieID: 1, ProjectionTypeID: 1, TheaterID: 1})
			if err == nil || err.Error() != "Validation failed\nPrice must be greater than zero." {
				t.Errorf("unexpected error %q", err)
			}
		})

		t.Run("Create And Delete", func(t *testing.T) {
			when := models.Time{Time: time.Now().Add(24 * time.Hour)}
			err := admin.CreateProjection(ctx, models.ProjectionInput{MovieID: 2, ProjectionTypeID: 2, TheaterID: 2, DateTime: when, Price: 11})
			if err != nil {
				t.Fatalf("CreateProjection: %v", err)
			}

			all := api.Projections()
			created := all[len(all)-1]
			msg, err := admin.DeleteProjection(ctx, created.ID)
			if err != nil {
				t.Fatalf("DeleteProjection: %v", err)
			}
			if msg != "Projection deleted successfully." {
				t.Errorf("unexpected message %q", msg)
			}
		})

		t.Run("Lookups", func(t *testing.T) {
			types, err := c.ProjectionTypes(ctx)
			if err != nil || len(types) != 2 {
				t.Errorf("ProjectionTypes() = %v, %v", types, err)
			}
			theaters, err := c.Theaters(ctx)
			if err != nil || len(theaters) != 2 || theaters[1].Label() == "" {
				t.Errorf("Theaters() = %v, %v", theaters, err)
			}
		})
	})

	t.Run("Tickets", func(t *testing.T) {
		api := tu.NewFakeAPI(t)
		ana := NewCinemaService(api.URL(), nil, nil).Authorized(api.Token(t, "ana"))

		t.Run("Buy And List", func(t *testing.T) {
			if err := ana.BuyTicket(ctx, models.TicketPurchase{ProjectionID: 1, SeatID: 13}); err != nil {
				t.Fatalf("BuyTicket: %v", err)
			}
			tickets, err := ana.MyTickets(ctx)
			if err != nil {
				t.Fatalf("MyTickets: %v", err)
			}
			if len(tickets) != 2 || tickets[1].Seat != "3" {
				t.Errorf("unexpected tickets %+v", tickets)
			}
		})

		t.Run("Taken Seat", func(t *testing.T) {
			err := ana.BuyTicket(ctx, models.TicketPurchase{ProjectionID: 1, SeatID: 13})
			if err == nil || err.Error() != "One or more validation errors occurred.: Seat is already taken." {
				t.Errorf("unexpected error %v", err)
			}
		})

		t.Run("No Seat Selected", func(t *testing.T) {
			err := ana.BuyTicket(ctx, models.TicketPurchase{ProjectionID: 1})
			if !errors.Is(err, shared.ErrMissingArgument) || !strings.Contains(err.Error(), "Please select a seat") {
				t.Errorf("unexpected error %v", err)
			}
		})

		t.Run("User Tickets Require Admin", func(t *testing.T) {
			if _, err := ana.UserTickets(ctx, "u-bo"); !errors.Is(err, shared.ErrForbidden) {
				t.Errorf("expected ErrForbidden, got %v", err)
			}

			admin := ana.Authorized(api.Token(t, "admin"))
			tickets, err := admin.UserTickets(ctx, "u-ana")
			if err != nil || len(tickets) != 2 {
				t.Errorf("UserTickets() = %v, %v", tickets, err)
			}
		})
	})

	t.Run("Accounts", func(t *testing.T) {
		api := tu.NewFakeAPI(t)
		c := NewCinemaService(api.URL(), nil, nil)

		t.Run("Login", func(t *testing.T) {
			resp, err := c.Login(ctx, models.LoginRequest{Username: "ana", Password: "secret"})
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			if resp.Token == "" || resp.Role != models.RoleUser || resp.Username != "ana" {
				t.Errorf("unexpected response %+v", resp)
			}
		})

		t.Run("Login With Bad Credentials", func(t *testing.T) {
			_, err := c.Login(ctx, models.LoginRequest{Username: "ana", Password: "nope"})
			if !errors.Is(err, shared.ErrNotAuthenticated) || err.Error() != "Invalid username or password" {
				t.Errorf("unexpected error %v", err)
			}
		})

		t.Run("Register Duplicate", func(t *testing.T) {
			err := c.Register(ctx, models.RegisterRequest{Username: "ana", Password: "x", Role: models.RoleUser})
			if err == nil || err.Error() != "Username already exists" {
				t.Errorf("unexpected error %v", err)
			}
		})

		t.Run("User Info", func(t *testing.T) {
			ana := c.Authorized(api.Token(t, "ana"))
			u, err := ana.UserInfo(ctx, "")
			if err != nil || u.Username != "ana" || u.Email != "ana@marquee.test" {
				t.Errorf("UserInfo() = %+v, %v", u, err)
			}
			if !strings.HasSuffix(api.LastRequest(), "/authentication/userinfo") {
				t.Errorf("unexpected request %s", api.LastRequest())
			}

			admin := c.Authorized(api.Token(t, "admin"))
			u, err = admin.UserInfo(ctx, "u-bo")
			if err != nil || u.Username != "bo" {
				t.Errorf("UserInfo(u-bo) = %+v, %v", u, err)
			}
		})

		t.Run("Change Password", func(t *testing.T) {
			bo := c.Authorized(api.Token(t, "bo"))
			err := bo.ChangePassword(ctx, models.ChangePasswordRequest{Username: "bo", CurrentPassword: "wrong", NewPassword: "longer-secret"})
			if err == nil || err.Error() != "Current password is incorrect" {
				t.Errorf("unexpected error %v", err)
			}

			err = bo.ChangePassword(ctx, models.ChangePasswordRequest{Username: "bo", CurrentPassword: "secret", NewPassword: "longer-secret"})
			if err != nil {
				t.Errorf("ChangePassword: %v", err)
			}
		})

		t.Run("Admin User Management", func(t *testing.T) {
			admin := c.Authorized(api.Token(t, "admin"))

			users, err := admin.Users(ctx, models.UserQuery{SortBy: models.UserSortUsername, SortDirection: models.SortDesc})
			if err != nil {
				t.Fatalf("Users: %v", err)
			}
			if len(users) != 3 || users[0].Username != "bo" {
				t.Errorf("expected descending usernames, got %+v", users)
			}

			if err := admin.UpdateRole(ctx, models.UpdateRoleRequest{Username: "bo", Role: " admin "}); err != nil {
				t.Fatalf("UpdateRole: %v", err)
			}
			if err := admin.DeleteUser(ctx, "u-bo"); err != nil {
				t.Fatalf("DeleteUser: %v", err)
			}
			if err := admin.DeleteUser(ctx, "u-bo"); !errors.Is(err, shared.ErrNotFound) || err.Error() != "User not found" {
				t.Errorf("expected not found, got %v", err)
			}
		})

		t.Run("Invalid Role Sends Nothing", func(t *testing.T) {
			before := len(api.Requests())
			err := c.Authorized("tok").UpdateRole(ctx, models.UpdateRoleRequest{Username: "ana", Role: "owner"})
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if len(api.Requests()) != before {
				t.Error("no request should be sent for an invalid role")
			}
		})

		t.Run("Users Forbidden For Regular Users", func(t *testing.T) {
			_, err := c.Authorized(api.Token(t, "ana")).Users(ctx, models.UserQuery{})
			if !errors.Is(err, shared.ErrForbidden) || err.Error() != "Failed to fetch users" {
				t.Errorf("unexpected error %v", err)
			}
		})
	})

	t.Run("Transport Failures", func(t *testing.T) {
		t.Run("Unavailable Upstream", func(t *testing.T) {
			api := tu.NewFakeAPI(t)
			api.FailNext(http.StatusServiceUnavailable, "")

			_, err := NewCinemaService(api.URL(), nil, nil).Theaters(ctx)
			if !errors.Is(err, shared.ErrServiceUnavailable) || err.Error() != "Failed to fetch theaters" {
				t.Errorf("unexpected error %v", err)
			}
		})

		t.Run("Connection Error", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
			_, err := NewCinemaService("http://cinema.test/api", client, nil).Movies(ctx, models.MovieQuery{})
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})

		t.Run("Malformed Body", func(t *testing.T) {
			api := tu.NewFakeAPI(t)
			api.FailNext(http.StatusOK, `{"items":[]}`)

			_, err := NewCinemaService(api.URL(), nil, nil).Movies(ctx, models.MovieQuery{})
			if !errors.Is(err, shared.ErrUnexpectedResponse) {
				t.Errorf("expected ErrUnexpectedResponse, got %v", err)
			}
		})

		t.Run("Canceled Context Stops The Limiter", func(t *testing.T) {
			c := NewCinemaService("http://cinema.test/api", nil, NewLimiter(1))
			c.limiter.Allow()

			cctx, cancel := context.WithCancel(ctx)
			cancel()
			if _, err := c.Theaters(cctx); err == nil || !strings.Contains(err.Error(), "rate limiter") {
				t.Errorf("expected limiter error, got %v", err)
			}
		})
	})
}

func TestAuthorized(t *testing.T) {
	t.Run("Sends Bearer Token Through oauth2 Transport", func(t *testing.T) {
		var got string
		client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			got = r.Header.Get("Authorization")
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Header: http.Header{}}, nil
		})}

		c := NewCinemaService("http://cinema.test/api", client, nil)
		if err := c.Authorized("abc").DeleteMovie(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if got != "Bearer abc" {
			t.Errorf("expected bearer header, got %q", got)
		}
		if c.Token() != "" {
			t.Error("the original client must stay anonymous")
		}
	})

	t.Run("Empty Token Is Anonymous", func(t *testing.T) {
		c := NewCinemaService("http://cinema.test/api", nil, nil)
		if anon := c.Authorized(""); anon.httpClient != c.base {
			t.Error("expected the base client for an empty token")
		}
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestErrorMessage(t *testing.T) {
	tc := []struct {
		name string
		body string
		want string
	}{
		{name: "empty", body: "", want: "fallback"},
		{name: "field errors", body: `{"title":"Bad","errors":{"b":["two"],"a":["one"]}}`, want: "Bad: one, two"},
		{name: "field errors without title", body: `{"errors":{"a":["one"]}}`, want: "fallback: one"},
		{name: "message with error list", body: `{"Message":"Nope","Errors":["x","y"]}`, want: "Nope\nx, y"},
		{name: "message only", body: `{"message":"Gone"}`, want: "Gone"},
		{name: "title only", body: `{"title":"Conflict"}`, want: "Conflict"},
		{name: "plain text", body: "User not found", want: "User not found"},
		{name: "json string", body: `"quoted"`, want: "quoted"},
		{name: "html", body: "<html></html>", want: "fallback"},
		{name: "unknown object", body: `{"detail":"x"}`, want: "fallback"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorMessage([]byte(tt.body), "fallback"); got != tt.want {
				t.Errorf("errorMessage(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

func TestNewLimiter(t *testing.T) {
	if NewLimiter(0) != nil {
		t.Error("expected nil limiter for zero rate")
	}
	if l := NewLimiter(0.5); l == nil || l.Burst() != 1 {
		t.Error("expected burst of at least 1")
	}
}
