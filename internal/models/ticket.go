package models

// Seat is one seat of a projection's theater. Availability is computed by the API.
type Seat struct {
	ID          int    `json:"id"`
	Number      Label  `json:"number"`
	IsAvailable bool   `json:"isAvailable"`
	Theater     string `json:"theater"`
}

// FindSeat returns the seat with id, if present.
func FindSeat(seats []Seat, id int) (Seat, bool) {
	for _, s := range seats {
		if s.ID == id {
			return s, true
		}
	}
	return Seat{}, false
}

// AvailableSeats counts seats still for sale.
func AvailableSeats(seats []Seat) int {
	n := 0
	for _, s := range seats {
		if s.IsAvailable {
			n++
		}
	}
	return n
}

// TicketPurchase is the body of POST /tickets/buy.
type TicketPurchase struct {
	ProjectionID int `json:"projectionId"`
	SeatID       int `json:"seatId"`
}

// Ticket is a purchased seat reservation as listed on the user pages.
type Ticket struct {
	ID                   int     `json:"id"`
	ProjectionID         int     `json:"projectionId,omitempty"`
	ProjectionMovieTitle string  `json:"projectionMovieTitle"`
	ProjectionDateTime   Time    `json:"projectionDateTime"`
	ProjectionType       string  `json:"projectionType"`
	Theater              string  `json:"theater"`
	Seat                 Label   `json:"seat"`
	Price                float64 `json:"price"`
}

// TicketsTotal sums ticket prices.
func TicketsTotal(tickets []Ticket) float64 {
	var total float64
	for _, t := range tickets {
		total += t.Price
	}
	return total
}
