package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/views"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ProjectionListView ViewState = iota
	SeatView
	ConfirmView
	ResultView
	MovieListView
	MovieDetailView
	TicketsView
)

// Options configures [NewModel].
type Options struct {
	Cinema  services.Cinema // already authorized for Session
	Session auth.Session
	Logger  *log.Logger
	UI      shared.UIConfig
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	cinema    services.Cinema
	session   auth.Session
	logger    *log.Logger
	perPage   int
	seatWidth int
	now       func() time.Time
	width     int
	height    int

	projections    []models.Projection
	page           views.Page[models.Projection]
	projectionList list.Model

	projection models.Projection
	seats      []models.Seat
	grid       [][]models.Seat
	row, col   int
	receipt    *views.Receipt

	movieList        list.Model
	movie            *models.Movie
	movieProjections []models.Projection

	tickets []models.Ticket

	notice string
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	m := &Model{
		ctx:       ctx,
		view:      ProjectionListView,
		cinema:    opts.Cinema,
		session:   opts.Session,
		logger:    opts.Logger,
		perPage:   opts.UI.ProjectionsPerPage,
		seatWidth: opts.UI.SeatRowWidth,
		now:       time.Now,
		help:      help.New(),
		keys:      newKeyMap(),
	}
	if m.perPage <= 0 {
		m.perPage = views.DefaultPerPage
	}
	if m.seatWidth <= 0 {
		m.seatWidth = views.DefaultSeatRowWidth
	}
	m.projectionList = newList("Projections", nil)
	m.movieList = newList("Movies", nil)
	return m
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 80, 20)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}

// Init initializes the TUI by fetching projections.
func (m *Model) Init() tea.Cmd {
	return m.fetchProjections()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.projectionList.SetSize(msg.Width-4, msg.Height-8)
		m.movieList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) && m.view != ConfirmView {
			return m, tea.Quit
		}
		switch m.view {
		case ProjectionListView:
			return m.handleProjectionListKeys(msg)
		case SeatView:
			return m.handleSeatKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case MovieListView:
			return m.handleMovieListKeys(msg)
		case MovieDetailView, TicketsView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Error("request failed", "kind", msg.kind, "err", msg.err)
	}

	switch msg.kind {
	case MsgProjectionsFetched:
		m.err = msg.err
		if msg.err == nil {
			m.projections = models.ActiveProjections(msg.data.([]models.Projection))
			m.setPage(1)
		}

	case MsgSeatsFetched:
		m.err = msg.err
		if msg.err == nil {
			data := msg.data.(seatsData)
			m.projection = data.projection
			m.seats = data.seats
			m.grid = views.SeatGrid(data.seats, m.seatWidth)
			m.row, m.col = firstFree(m.grid)
			m.view = SeatView
		}

	case MsgPurchaseComplete:
		m.err = msg.err
		m.receipt = nil
		if msg.err == nil {
			receipt := msg.data.(views.Receipt)
			m.receipt = &receipt
		}
		m.view = ResultView

	case MsgMoviesFetched:
		m.err = msg.err
		if msg.err == nil {
			movies := models.ActiveMovies(msg.data.([]models.Movie))
			items := make([]list.Item, len(movies))
			for i, mv := range movies {
				items[i] = movieItem{movie: mv}
			}
			m.movieList.SetItems(items)
			m.movieList.ResetSelected()
			m.view = MovieListView
		}

	case MsgMovieFetched:
		m.err = msg.err
		if msg.err == nil {
			data := msg.data.(movieData)
			m.movie = &data.movie
			m.movieProjections = models.ActiveProjections(data.projections)
			m.view = MovieDetailView
		}

	case MsgTicketsFetched:
		m.err = msg.err
		if msg.err == nil {
			m.tickets = msg.data.([]models.Ticket)
			m.view = TicketsView
		}
	}
	return m, nil
}

// setPage shows page number of the projections.
func (m *Model) setPage(number int) {
	m.page = views.Paginate(m.projections, number, m.perPage)
	now := m.now()
	items := make([]list.Item, len(m.page.Items))
	for i, p := range m.page.Items {
		items[i] = projectionItem{projection: p, now: now}
	}
	m.projectionList.SetItems(items)
	m.projectionList.ResetSelected()
	m.projectionList.Title = fmt.Sprintf("Projections (page %d of %d)", m.page.Number, max(len(m.page.Numbers), 1))
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case ProjectionListView:
		body = m.renderProjectionList()
	case SeatView:
		body = m.renderSeats()
	case ConfirmView:
		body = m.renderConfirm()
	case ResultView:
		body = m.renderResult()
	case MovieListView:
		body = m.renderMovieList()
	case MovieDetailView:
		body = m.renderMovie()
	case TicketsView:
		body = m.renderTickets()
	}

	if m.err != nil && m.view != ResultView {
		body = fmt.Sprintf("%s\n\n%s", styles.err.Render("Error: "+m.err.Error()), body)
	} else if m.notice != "" {
		body = fmt.Sprintf("%s\n\n%s", styles.warn.Render(m.notice), body)
	}
	return body
}

func (m *Model) handleProjectionListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch {
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.projectionList.SelectedItem().(projectionItem); ok {
			return m, m.fetchSeats(item.projection)
		}
		return m, nil
	case key.Matches(msg, m.keys.left):
		if m.page.HasPrev() {
			m.setPage(m.page.Number - 1)
		}
		return m, nil
	case key.Matches(msg, m.keys.right):
		if m.page.HasNext() {
			m.setPage(m.page.Number + 1)
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchProjections()
	case key.Matches(msg, m.keys.movies):
		return m, m.fetchMovies()
	case key.Matches(msg, m.keys.tickets):
		return m, m.fetchTickets()
	}

	var cmd tea.Cmd
	m.projectionList, cmd = m.projectionList.Update(msg)
	return m, cmd
}

func (m *Model) handleSeatKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = ProjectionListView
	case key.Matches(msg, m.keys.up):
		m.moveCursor(-1, 0)
	case key.Matches(msg, m.keys.down):
		m.moveCursor(1, 0)
	case key.Matches(msg, m.keys.left):
		m.moveCursor(0, -1)
	case key.Matches(msg, m.keys.right):
		m.moveCursor(0, 1)
	case key.Matches(msg, m.keys.enter):
		seat, ok := m.cursorSeat()
		switch {
		case !m.session.IsUser():
			m.notice = "Log in as a user to buy tickets"
		case !m.projection.Bookable(m.now()):
			m.notice = "Tickets for this projection cannot be bought"
		case !ok || !seat.IsAvailable:
			m.notice = "That seat is taken"
		default:
			m.view = ConfirmView
		}
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		seat, _ := m.cursorSeat()
		return m, m.buyTicket(m.projection, seat.ID)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = SeatView
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.enter):
		m.view = ProjectionListView
		m.receipt = nil
		m.err = nil
		return m, m.fetchProjections()
	case key.Matches(msg, m.keys.tickets):
		return m, m.fetchTickets()
	}
	return m, nil
}

func (m *Model) handleMovieListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.movieList.SelectedItem().(movieItem); ok {
			return m, m.fetchMovie(item.movie.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.projections):
		m.view = ProjectionListView
		return m, nil
	}

	var cmd tea.Cmd
	m.movieList, cmd = m.movieList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		if m.view == MovieDetailView {
			m.view = MovieListView
		} else {
			m.view = ProjectionListView
		}
		m.err = nil
	case key.Matches(msg, m.keys.projections):
		m.view = ProjectionListView
		m.err = nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ProjectionListView:
		m.projectionList, cmd = m.projectionList.Update(msg)
	case MovieListView:
		m.movieList, cmd = m.movieList.Update(msg)
	}
	return m, cmd
}

// moveCursor steps through the seat grid, clamping at its edges.
func (m *Model) moveCursor(dRow, dCol int) {
	if len(m.grid) == 0 {
		return
	}
	m.row = min(max(m.row+dRow, 0), len(m.grid)-1)
	m.col = min(max(m.col+dCol, 0), len(m.grid[m.row])-1)
}

func (m *Model) cursorSeat() (models.Seat, bool) {
	if m.row >= len(m.grid) || m.col >= len(m.grid[m.row]) {
		return models.Seat{}, false
	}
	return m.grid[m.row][m.col], true
}

// firstFree is the position of the first available seat, or the origin.
func firstFree(grid [][]models.Seat) (int, int) {
	for r, row := range grid {
		for c, s := range row {
			if s.IsAvailable {
				return r, c
			}
		}
	}
	return 0, 0
}

func (m *Model) fetchProjections() tea.Cmd {
	return func() tea.Msg {
		projections, err := m.cinema.Projections(m.ctx, models.ProjectionQuery{})
		return projectionsFetchedMsg(projections, err)
	}
}

func (m *Model) fetchSeats(p models.Projection) tea.Cmd {
	return func() tea.Msg {
		seats, err := m.cinema.Seats(m.ctx, p.ID)
		return seatsFetchedMsg(p, seats, err)
	}
}

func (m *Model) buyTicket(p models.Projection, seatID int) tea.Cmd {
	return func() tea.Msg {
		if err := m.cinema.BuyTicket(m.ctx, models.TicketPurchase{ProjectionID: p.ID, SeatID: seatID}); err != nil {
			return purchaseCompleteMsg(views.Receipt{}, err)
		}
		m.logger.Info("ticket bought", "projection", p.ID, "seat", seatID)
		return purchaseCompleteMsg(views.NewReceipt(p, m.seats, seatID), nil)
	}
}

func (m *Model) fetchMovies() tea.Cmd {
	return func() tea.Msg {
		movies, err := m.cinema.Movies(m.ctx, models.MovieQuery{SortOrder: models.MovieSortTitle})
		return moviesFetchedMsg(movies, err)
	}
}

// fetchMovie loads a movie and, for logged-in sessions, its projections.
func (m *Model) fetchMovie(id int) tea.Cmd {
	return func() tea.Msg {
		movie, err := m.cinema.Movie(m.ctx, id)
		if err != nil {
			return movieFetchedMsg(models.Movie{}, nil, err)
		}
		var projections []models.Projection
		if m.session.Authenticated() {
			projections, err = m.cinema.MovieProjections(m.ctx, id)
			if err != nil {
				return movieFetchedMsg(models.Movie{}, nil, err)
			}
		}
		return movieFetchedMsg(*movie, projections, nil)
	}
}

func (m *Model) fetchTickets() tea.Cmd {
	return func() tea.Msg {
		if !m.session.IsUser() {
			return ticketsFetchedMsg(nil, fmt.Errorf("%w: log in as a user to see your tickets", shared.ErrNotAuthenticated))
		}
		tickets, err := m.cinema.MyTickets(m.ctx)
		return ticketsFetchedMsg(tickets, err)
	}
}

func (m *Model) renderProjectionList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.left, m.keys.right, m.keys.movies}
	if m.session.IsUser() {
		helpKeys = append(helpKeys, m.keys.tickets)
	}
	helpKeys = append(helpKeys, m.keys.refresh, m.keys.quit)

	who := styles.help.Render(m.session.String())
	return fmt.Sprintf("%s\n%s\n\n%s", who, m.projectionList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderSeats() string {
	p := m.projection
	var b strings.Builder
	b.WriteString(styles.title.Render(p.MovieTitle))
	fmt.Fprintf(&b, "\n%s • %s • %s\nPrice: %s\n\n", shared.FormatDateTime(p.DateTime.Time), p.ProjectionType, p.Theater, shared.FormatPrice(p.Price))
	fmt.Fprintf(&b, "Select a Seat in %s\n\n", views.SeatHall(m.seats))

	for r, row := range m.grid {
		cells := make([]string, len(row))
		for c, s := range row {
			label := fmt.Sprintf("[%3s]", s.Number)
			switch {
			case r == m.row && c == m.col:
				cells[c] = styles.cursor.Render(label)
			case s.IsAvailable:
				cells[c] = styles.seatFree.Render(label)
			default:
				cells[c] = styles.seatTaken.Render(label)
			}
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}
	if len(m.grid) == 0 {
		b.WriteString(styles.warn.Render("No seats"))
		b.WriteString("\n")
	}

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.left, m.keys.right, m.keys.enter, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s", b.String(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	seat, _ := m.cursorSeat()
	title := styles.title.Render(fmt.Sprintf("Buy seat %s for '%s'?", seat.Number, m.projection.MovieTitle))
	info := fmt.Sprintf("\nDate and Time: %s\nTheater: %s\nPrice: %s\n",
		shared.FormatDateTime(m.projection.DateTime.Time), m.projection.Theater, shared.FormatPrice(m.projection.Price))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.tickets, m.keys.quit}
	if m.err != nil {
		msg := m.err.Error()
		if errors.Is(m.err, shared.ErrNotAuthenticated) {
			msg += " (log in again with marquee auth login)"
		}
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("Purchase failed: "+msg), m.help.ShortHelpView(helpKeys))
	}
	if m.receipt == nil {
		return styles.err.Render("No result available")
	}

	r := m.receipt
	title := styles.ok.Render("✓ Ticket Bought Successfully")
	info := fmt.Sprintf("\nProjection: %s\nDate and Time: %s\nSeat: %s\nPrice: %s",
		r.Projection, shared.FormatDateTime(r.DateTime.Time), r.Seat, shared.FormatPrice(r.Price))
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderMovieList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.movieList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderMovie() string {
	if m.movie == nil {
		return ""
	}
	mv := m.movie

	var b strings.Builder
	b.WriteString(styles.title.Render(mv.Title))
	fmt.Fprintf(&b, "\nDirector: %s\nActors: %s\nGenre: %s\nDuration: %d min\nDistributor: %s\nCountry: %s\nYear: %d\n",
		mv.Director, mv.Actors, mv.Genre, mv.Duration, mv.Distributor, mv.CountryOrigin, mv.ReleaseYear)
	if mv.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", mv.Description)
	}

	if m.session.Authenticated() {
		b.WriteString("\n")
		if len(m.movieProjections) == 0 {
			b.WriteString(styles.warn.Render("There is no projections of this movie"))
			b.WriteString("\n")
		}
		now := m.now()
		for _, p := range m.movieProjections {
			fmt.Fprintf(&b, "  • %s\n", projectionItem{projection: p, now: now}.Description())
		}
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.projections, m.keys.quit}
	return fmt.Sprintf("%s\n%s", b.String(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderTickets() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Bought Tickets"))
	b.WriteString("\n")
	if len(m.tickets) == 0 {
		b.WriteString(styles.warn.Render("User still hasn't bought any tickets!"))
		b.WriteString("\n")
	}
	for _, t := range m.tickets {
		fmt.Fprintf(&b, "  • %s • %s • %s • %s • seat %s • %s\n",
			t.ProjectionMovieTitle, shared.FormatDateTime(t.ProjectionDateTime.Time), t.ProjectionType, t.Theater, t.Seat, shared.FormatPrice(t.Price))
	}
	if len(m.tickets) > 0 {
		fmt.Fprintf(&b, "\nTotal: %s\n", styles.ok.Render(shared.FormatPrice(models.TicketsTotal(m.tickets))))
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s", b.String(), m.help.ShortHelpView(helpKeys))
}
