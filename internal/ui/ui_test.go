package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
	th "github.com/desertthunder/marquee/internal/testing"
	"github.com/desertthunder/marquee/internal/views"
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func newTestModel(t *testing.T, username string) (*Model, *th.FakeAPI) {
	t.Helper()
	fake := th.NewFakeAPI(t)
	client := services.NewCinemaService(fake.URL(), nil, nil)

	session := auth.Anonymous
	if username != "" {
		var role string
		for _, u := range fake.Users() {
			if u.Username == username {
				role = u.Role
			}
		}
		session = auth.Session{Token: fake.Token(t, username), Role: role, Username: username}
	}

	m := NewModel(context.Background(), Options{Cinema: client.WithToken(session.Token), Session: session})
	return m, fake
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m.Update(cmd())
}

func TestProjectionList(t *testing.T) {
	t.Run("loads active projections a page at a time", func(t *testing.T) {
		m, _ := newTestModel(t, "")
		run(t, m, m.Init())

		if m.err != nil {
			t.Fatalf("unexpected error: %v", m.err)
		}
		if len(m.projections) != 4 {
			t.Fatalf("expected 4 active projections, got %d", len(m.projections))
		}
		if m.page.Number != 1 || len(m.page.Items) != 3 {
			t.Errorf("expected first page of 3, got page %d with %d", m.page.Number, len(m.page.Items))
		}

		m.Update(runes("l"))
		if m.page.Number != 2 || len(m.page.Items) != 1 {
			t.Errorf("expected second page of 1, got page %d with %d", m.page.Number, len(m.page.Items))
		}
		m.Update(runes("l"))
		if m.page.Number != 2 {
			t.Errorf("expected to stay on the last page, got %d", m.page.Number)
		}
		m.Update(runes("h"))
		if m.page.Number != 1 {
			t.Errorf("expected first page, got %d", m.page.Number)
		}

		th.AssertContains(t, m.View(), "Projections (page 1 of 2)", "not logged in")
	})

	t.Run("shows fetch errors", func(t *testing.T) {
		m, fake := newTestModel(t, "")
		fake.FailNext(500, `{"message":"boom"}`)
		run(t, m, m.Init())

		th.AssertContains(t, m.View(), "Error: boom")
	})

	t.Run("q quits", func(t *testing.T) {
		m, _ := newTestModel(t, "")
		_, cmd := m.Update(runes("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func selectProjection(t *testing.T, m *Model, id int) {
	t.Helper()
	for _, p := range m.projections {
		if p.ID == id {
			run(t, m, m.fetchSeats(p))
			return
		}
	}
	t.Fatalf("projection %d not listed", id)
}

func TestSeatPicker(t *testing.T) {
	t.Run("starts on the first free seat and buys it", func(t *testing.T) {
		m, fake := newTestModel(t, "ana")
		run(t, m, m.Init())
		selectProjection(t, m, 1)

		if m.view != SeatView {
			t.Fatalf("expected seat view, got %v", m.view)
		}
		seat, _ := m.cursorSeat()
		if seat.ID != 12 {
			t.Errorf("expected cursor on seat 12, got %d", seat.ID)
		}
		th.AssertContains(t, m.View(), "Select a Seat in Hall 1")

		m.Update(enter)
		if m.view != ConfirmView {
			t.Fatalf("expected confirm view, got %v (%s)", m.view, m.notice)
		}

		_, cmd := m.Update(runes("y"))
		run(t, m, cmd)

		if m.view != ResultView || m.receipt == nil {
			t.Fatalf("expected receipt, got view %v err %v", m.view, m.err)
		}
		if m.receipt.Seat != "2" || m.receipt.Projection != "Alien" {
			t.Errorf("unexpected receipt %+v", m.receipt)
		}
		th.AssertContains(t, m.View(), "Ticket Bought Successfully", "8.50")

		if got := len(fake.TicketsOf("u-ana")); got != 2 {
			t.Errorf("expected 2 tickets, got %d", got)
		}
	})

	t.Run("cursor stays inside the grid", func(t *testing.T) {
		m, _ := newTestModel(t, "ana")
		run(t, m, m.Init())
		selectProjection(t, m, 1)

		for range 10 {
			m.Update(runes("h"))
		}
		m.Update(runes("k"))
		if m.row != 0 || m.col != 0 {
			t.Errorf("expected origin, got %d,%d", m.row, m.col)
		}
		m.Update(enter)
		if m.view != SeatView || m.notice != "That seat is taken" {
			t.Errorf("expected taken notice, got view %v notice %q", m.view, m.notice)
		}
	})

	t.Run("anonymous sessions cannot buy", func(t *testing.T) {
		m, _ := newTestModel(t, "")
		run(t, m, m.Init())
		selectProjection(t, m, 1)

		m.Update(enter)
		if m.view != SeatView {
			t.Fatalf("expected to stay on seats, got %v", m.view)
		}
		th.AssertContains(t, m.View(), "Log in as a user to buy tickets")
	})

	t.Run("ended projections cannot be bought", func(t *testing.T) {
		m, _ := newTestModel(t, "ana")
		run(t, m, m.Init())
		selectProjection(t, m, 3)

		m.Update(enter)
		if m.notice != "Tickets for this projection cannot be bought" {
			t.Errorf("unexpected notice %q", m.notice)
		}
	})

	t.Run("n returns from the confirmation", func(t *testing.T) {
		m, _ := newTestModel(t, "ana")
		run(t, m, m.Init())
		selectProjection(t, m, 1)
		m.Update(enter)
		m.Update(runes("n"))
		if m.view != SeatView {
			t.Errorf("expected seat view, got %v", m.view)
		}
	})

	t.Run("failed purchases show the API message", func(t *testing.T) {
		m, _ := newTestModel(t, "ana")
		m.Update(purchaseCompleteMsg(views.Receipt{}, errors.New("Seat is already taken.")))

		if m.view != ResultView {
			t.Fatalf("expected result view, got %v", m.view)
		}
		th.AssertContains(t, m.View(), "Purchase failed: Seat is already taken.")
	})
}

func TestMoviesAndTickets(t *testing.T) {
	t.Run("lists movies and opens one", func(t *testing.T) {
		m, _ := newTestModel(t, "ana")
		_, cmd := m.Update(runes("m"))
		run(t, m, cmd)

		if m.view != MovieListView {
			t.Fatalf("expected movie list, got %v (err %v)", m.view, m.err)
		}
		if got := len(m.movieList.Items()); got != 2 {
			t.Errorf("expected 2 active movies, got %d", got)
		}

		run(t, m, m.fetchMovie(1))
		if m.view != MovieDetailView {
			t.Fatalf("expected movie detail, got %v", m.view)
		}
		th.AssertContains(t, m.View(), "Alien", "Ridley Scott", "Hall 1")

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != MovieListView {
			t.Errorf("expected movie list after esc, got %v", m.view)
		}
	})

	t.Run("shows my tickets with the total", func(t *testing.T) {
		m, _ := newTestModel(t, "ana")
		_, cmd := m.Update(runes("t"))
		run(t, m, cmd)

		if m.view != TicketsView {
			t.Fatalf("expected tickets view, got %v (err %v)", m.view, m.err)
		}
		th.AssertContains(t, m.View(), "Bought Tickets", "Alien", "seat 1", "Total: ")
	})

	t.Run("tickets need a user session", func(t *testing.T) {
		m, fake := newTestModel(t, "")
		_, cmd := m.Update(runes("t"))
		run(t, m, cmd)

		if !errors.Is(m.err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", m.err)
		}
		if len(fake.Requests()) != 0 {
			t.Errorf("expected no requests, got %v", fake.Requests())
		}
	})
}

func TestItems(t *testing.T) {
	now := time.Now()
	p := models.Projection{MovieTitle: "Heat", Theater: "Hall 2", ProjectionType: "3D", Price: 10, DateTime: models.Time{Time: now.Add(time.Hour)}}

	t.Run("sold out", func(t *testing.T) {
		desc := projectionItem{projection: p, now: now}.Description()
		if !strings.HasSuffix(desc, "No tickets available") {
			t.Errorf("unexpected description %q", desc)
		}
	})

	t.Run("ended", func(t *testing.T) {
		desc := projectionItem{projection: p, now: now.Add(2 * time.Hour)}.Description()
		if !strings.HasSuffix(desc, "Projection has ended") {
			t.Errorf("unexpected description %q", desc)
		}
	})

	t.Run("bookable", func(t *testing.T) {
		p := p
		p.UnsoldTicketsCount = 3
		desc := projectionItem{projection: p, now: now}.Description()
		th.AssertContains(t, desc, "3 left", "10.00", "Hall 2")
	})
}
