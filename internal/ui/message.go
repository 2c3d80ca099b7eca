package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/views"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
	err  error
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProjectionsFetched MsgKind = iota
	MsgSeatsFetched
	MsgPurchaseComplete
	MsgMoviesFetched
	MsgMovieFetched
	MsgTicketsFetched
)

type seatsData struct {
	projection models.Projection
	seats      []models.Seat
}

type movieData struct {
	movie       models.Movie
	projections []models.Projection
}

// projectionsFetchedMsg is the constructor for [MsgProjectionsFetched]
func projectionsFetchedMsg(projections []models.Projection, err error) Msg {
	return Msg{kind: MsgProjectionsFetched, data: projections, err: err}
}

// seatsFetchedMsg is the constructor for [MsgSeatsFetched]
func seatsFetchedMsg(p models.Projection, seats []models.Seat, err error) Msg {
	return Msg{kind: MsgSeatsFetched, data: seatsData{projection: p, seats: seats}, err: err}
}

// purchaseCompleteMsg is the constructor for [MsgPurchaseComplete]
func purchaseCompleteMsg(receipt views.Receipt, err error) Msg {
	return Msg{kind: MsgPurchaseComplete, data: receipt, err: err}
}

// moviesFetchedMsg is the constructor for [MsgMoviesFetched]
func moviesFetchedMsg(movies []models.Movie, err error) Msg {
	return Msg{kind: MsgMoviesFetched, data: movies, err: err}
}

// movieFetchedMsg is the constructor for [MsgMovieFetched]
func movieFetchedMsg(m models.Movie, projections []models.Projection, err error) Msg {
	return Msg{kind: MsgMovieFetched, data: movieData{movie: m, projections: projections}, err: err}
}

// ticketsFetchedMsg is the constructor for [MsgTicketsFetched]
func ticketsFetchedMsg(tickets []models.Ticket, err error) Msg {
	return Msg{kind: MsgTicketsFetched, data: tickets, err: err}
}
