package views

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

var (
	anonymous = auth.Anonymous
	user      = auth.Session{Token: "t", Role: models.RoleUser, Username: "ana"}
	admin     = auth.Session{Token: "t", Role: models.RoleAdmin, Username: "admin"}
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	t.Run("First Page", func(t *testing.T) {
		p := Paginate(items, 1, 3)
		if !slices.Equal(p.Items, []int{1, 2, 3}) {
			t.Errorf("unexpected items %v", p.Items)
		}
		if !slices.Equal(p.Numbers, []int{1, 2, 3}) || p.Total != 7 {
			t.Errorf("unexpected page numbers %v (total %d)", p.Numbers, p.Total)
		}
		if p.HasPrev() || !p.HasNext() {
			t.Error("first page should only have a next page")
		}
	})

	t.Run("Last Page Is Short", func(t *testing.T) {
		p := Paginate(items, 3, 3)
		if !slices.Equal(p.Items, []int{7}) {
			t.Errorf("unexpected items %v", p.Items)
		}
		if !p.HasPrev() || p.HasNext() {
			t.Error("last page should only have a previous page")
		}
	})

	t.Run("Out Of Range Is Clamped", func(t *testing.T) {
		if p := Paginate(items, 9, 3); p.Number != 3 {
			t.Errorf("expected page 3, got %d", p.Number)
		}
		if p := Paginate(items, -1, 3); p.Number != 1 {
			t.Errorf("expected page 1, got %d", p.Number)
		}
	})

	t.Run("Default Page Size", func(t *testing.T) {
		if p := Paginate(items, 1, 0); len(p.Items) != DefaultPerPage {
			t.Errorf("expected %d items, got %d", DefaultPerPage, len(p.Items))
		}
	})

	t.Run("Empty List", func(t *testing.T) {
		p := Paginate([]int{}, 2, 3)
		if len(p.Items) != 0 || len(p.Numbers) != 0 || p.Number != 1 {
			t.Errorf("unexpected empty page %+v", p)
		}
		if p.HasPrev() || p.HasNext() {
			t.Error("empty list should have no neighbours")
		}
	})
}

func TestSorting(t *testing.T) {
	t.Run("Movie Sort Toggles", func(t *testing.T) {
		cases := []struct{ current, field, want string }{
			{"", "title", "title"},
			{"title", "title", "title_desc"},
			{"title_desc", "title", "title"},
			{"title", "genre", "genre"},
		}
		for _, c := range cases {
			if got := ToggleMovieSort(c.current, c.field); got != c.want {
				t.Errorf("ToggleMovieSort(%q, %q) = %q, want %q", c.current, c.field, got, c.want)
			}
		}
	})

	t.Run("Movie Sort State", func(t *testing.T) {
		field, desc := MovieSortState("year_desc")
		if field != "year" || !desc {
			t.Errorf("got %q %v", field, desc)
		}
		if !ValidMovieSort("") || !ValidMovieSort("country_desc") || ValidMovieSort("budget") {
			t.Error("unexpected ValidMovieSort result")
		}
	})

	t.Run("Projection Sort Flips Then Resets", func(t *testing.T) {
		s := ProjectionSort{}.Toggle(models.ProjectionSortPrice)
		if s != (ProjectionSort{Field: "price"}) {
			t.Errorf("unexpected state %+v", s)
		}
		if s = s.Toggle(models.ProjectionSortPrice); !s.Descending {
			t.Error("second click on price should sort descending")
		}
		if s = s.Toggle(models.ProjectionSortDate); s.Field != "date" || s.Descending {
			t.Errorf("new field should sort ascending, got %+v", s)
		}

		q := s.Apply(models.ProjectionQuery{MovieTitle: "Alien"})
		if q.SortBy != "date" || q.SortDescending || q.MovieTitle != "Alien" {
			t.Errorf("unexpected query %+v", q)
		}
	})

	t.Run("Indicator", func(t *testing.T) {
		if Indicator(false, true) != "" || Indicator(true, false) != "▲" || Indicator(true, true) != "▼" {
			t.Error("unexpected indicator")
		}
	})
}

func labels(links []Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.Label
	}
	return out
}

func TestNavLinks(t *testing.T) {
	cases := []struct {
		name    string
		session auth.Session
		want    []string
	}{
		{"Anonymous", anonymous, []string{"Movies App", "Register", "Login", "Movies"}},
		{"User", user, []string{"Movies App", "Logout", "User Page", "Movies"}},
		{"Admin", admin, []string{"Movies App", "Logout", "Administrator Page", "Movies"}},
		{"Unknown Role", auth.Session{Token: "t", Role: "Guest"}, []string{"Movies App", "Logout", "Movies"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			links := NavLinks(c.session)
			if got := labels(links); !slices.Equal(got, c.want) {
				t.Errorf("got %v, want %v", got, c.want)
			}
			if links[0].Href != "/" || links[len(links)-1].Href != "/movies" {
				t.Errorf("unexpected hrefs %+v", links)
			}
		})
	}
}

func TestProjectionAction(t *testing.T) {
	now := time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)
	upcoming := models.Projection{ID: 4, DateTime: models.Time{Time: now.Add(time.Hour)}, UnsoldTicketsCount: 2}
	ended := models.Projection{ID: 3, DateTime: models.Time{Time: now.Add(-time.Hour)}, UnsoldTicketsCount: 2}
	soldOut := models.Projection{ID: 2, DateTime: models.Time{Time: now.Add(time.Hour)}}

	t.Run("Admin Deletes", func(t *testing.T) {
		a := ProjectionAction(admin, ended, now)
		if a.Kind != ActionDelete || a.Href != "/projections/3/delete" {
			t.Errorf("unexpected action %+v", a)
		}
	})

	t.Run("User", func(t *testing.T) {
		if a := ProjectionAction(user, upcoming, now); a.Kind != ActionBuy || a.Label != "Buy a Ticket" || a.Href != "/projections/4" {
			t.Errorf("unexpected action %+v", a)
		}
		if a := ProjectionAction(user, ended, now); a.Kind != ActionEnded || a.Label != "Projection has ended" {
			t.Errorf("unexpected action %+v", a)
		}
		if a := ProjectionAction(user, soldOut, now); a.Kind != ActionSoldOut || a.Label != "No tickets available" {
			t.Errorf("unexpected action %+v", a)
		}
	})

	t.Run("Ended Wins Over Sold Out", func(t *testing.T) {
		p := ended
		p.UnsoldTicketsCount = 0
		if a := ProjectionAction(user, p, now); a.Kind != ActionEnded {
			t.Errorf("unexpected action %+v", a)
		}
	})

	t.Run("Anonymous", func(t *testing.T) {
		if a := ProjectionAction(anonymous, upcoming, now); a.Kind != ActionNone {
			t.Errorf("unexpected action %+v", a)
		}
		if ShowActionColumn(anonymous) || !ShowActionColumn(user) || !ShowActionColumn(admin) {
			t.Error("unexpected action column visibility")
		}
	})
}

func TestSeats(t *testing.T) {
	seats := make([]models.Seat, 23)
	for i := range seats {
		seats[i] = models.Seat{ID: i + 1, Number: models.Label(string(rune('A' + i))), Theater: "Hall 1"}
	}

	t.Run("Grid", func(t *testing.T) {
		rows := SeatGrid(seats, 10)
		if len(rows) != 3 || len(rows[2]) != 3 || rows[1][0].ID != 11 {
			t.Errorf("unexpected grid shape: %d rows", len(rows))
		}
		if rows := SeatGrid(seats, 0); len(rows[0]) != DefaultSeatRowWidth {
			t.Errorf("expected default width, got %d", len(rows[0]))
		}
		if rows := SeatGrid(nil, 5); len(rows) != 0 {
			t.Errorf("expected no rows, got %d", len(rows))
		}
	})

	t.Run("Hall", func(t *testing.T) {
		if SeatHall(seats) != "Hall 1" || SeatHall(nil) != "" {
			t.Error("unexpected hall")
		}
	})

	t.Run("Receipt", func(t *testing.T) {
		p := models.Projection{MovieTitle: "Alien", Price: 8.5, DateTime: models.Time{Time: time.Now()}}
		r := NewReceipt(p, seats, 3)
		if r.Projection != "Alien" || r.Seat != "C" || r.Price != 8.5 || !r.DateTime.Equal(p.DateTime.Time) {
			t.Errorf("unexpected receipt %+v", r)
		}
		if r := NewReceipt(p, seats, 99); r.Seat != "" {
			t.Errorf("unknown seat should leave the seat blank, got %q", r.Seat)
		}
	})
}

func assertValidation(t *testing.T, err error, msg string) {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Message != msg {
		t.Errorf("expected %q, got %q", msg, ve.Message)
	}
	if !errors.Is(err, shared.ErrInvalidInput) {
		t.Error("validation errors should match ErrInvalidInput")
	}
}

func TestForms(t *testing.T) {
	t.Run("Login", func(t *testing.T) {
		_, err := LoginForm{Username: " ", Password: "x"}.Validate()
		assertValidation(t, err, MsgEmptyCredentials)

		_, err = LoginForm{Username: "ana"}.Validate()
		assertValidation(t, err, MsgEmptyCredentials)

		req, err := LoginForm{Username: " ana ", Password: "secret"}.Validate()
		if err != nil || req.Username != "ana" || req.Password != "secret" {
			t.Errorf("unexpected request %+v (%v)", req, err)
		}
	})

	t.Run("Registration", func(t *testing.T) {
		_, err := RegistrationForm{Username: "cy", Password: "a", ConfirmPassword: "b"}.Validate()
		assertValidation(t, err, MsgPasswordMismatch)

		_, err = RegistrationForm{Username: "cy", Password: "a", ConfirmPassword: "a", Role: "root"}.Validate()
		assertValidation(t, err, MsgInvalidRole)

		req, err := RegistrationForm{Username: "cy", Email: "cy@x.test", Password: "a", ConfirmPassword: "a"}.Validate()
		if err != nil || req.Role != models.RoleUser || req.Email != "cy@x.test" {
			t.Errorf("unexpected request %+v (%v)", req, err)
		}

		req, err = RegistrationForm{Username: "cy", Password: "a", ConfirmPassword: "a", Role: "admin"}.Validate()
		if err != nil || req.Role != models.RoleAdmin {
			t.Errorf("unexpected request %+v (%v)", req, err)
		}
	})

	t.Run("Role", func(t *testing.T) {
		_, err := RoleForm{Username: "bo", Role: "superuser"}.Validate()
		assertValidation(t, err, MsgInvalidRole)

		req, err := RoleForm{Username: "bo", Role: "ADMIN"}.Validate()
		if err != nil || req.Role != models.RoleAdmin || req.Username != "bo" {
			t.Errorf("unexpected request %+v (%v)", req, err)
		}
	})

	t.Run("Password", func(t *testing.T) {
		if _, err := (PasswordForm{Username: "ana", NewPassword: "x"}).Validate(); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected invalid input, got %v", err)
		}
		req, err := PasswordForm{Username: "ana", CurrentPassword: "a", NewPassword: "b"}.Validate()
		if err != nil || req.CurrentPassword != "a" || req.NewPassword != "b" {
			t.Errorf("unexpected request %+v (%v)", req, err)
		}
	})

	t.Run("Movie", func(t *testing.T) {
		_, err := MovieForm{Title: "  "}.Validate()
		assertValidation(t, err, "Title is required")

		_, err = MovieForm{Title: "Alien", Duration: "two hours"}.Validate()
		assertValidation(t, err, "Duration must be a whole number of minutes")

		in, err := MovieForm{Title: " Alien ", Duration: "117", ReleaseYear: ""}.Validate()
		if err != nil || in.Title != "Alien" || in.Duration != 117 || in.ID != 0 {
			t.Errorf("unexpected input %+v (%v)", in, err)
		}

		f := MovieFormFrom(models.Movie{ID: 2, Title: "Heat", Duration: 170, ReleaseYear: 1995})
		if !f.Editing() {
			t.Error("prefilled form should edit")
		}
		in, err = f.Validate()
		if err != nil || in.ID != 2 || in.ReleaseYear != 1995 {
			t.Errorf("unexpected input %+v (%v)", in, err)
		}
	})

	t.Run("Projection", func(t *testing.T) {
		valid := ProjectionForm{MovieID: "1", ProjectionTypeID: "2", TheaterID: "1", DateTime: "2030-01-02T19:30", Price: "9.5"}
		in, err := valid.Validate()
		if err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if in.MovieID != 1 || in.ProjectionTypeID != 2 || in.Price != 9.5 || in.DateTime.Hour() != 19 {
			t.Errorf("unexpected input %+v", in)
		}

		bad := valid
		bad.TheaterID = ""
		_, err = bad.Validate()
		assertValidation(t, err, "Select a theater")

		bad = valid
		bad.Price = "0"
		_, err = bad.Validate()
		assertValidation(t, err, "Price must be a positive number")

		bad = valid
		bad.DateTime = "tomorrow"
		_, err = bad.Validate()
		assertValidation(t, err, "Enter the projection date and time")
	})

	t.Run("Seat Choice", func(t *testing.T) {
		_, err := SeatChoice("")
		assertValidation(t, err, MsgNoSeat)
		if id, err := SeatChoice("12"); err != nil || id != 12 {
			t.Errorf("got %d (%v)", id, err)
		}
	})
}
