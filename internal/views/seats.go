package views

import "github.com/desertthunder/marquee/internal/models"

// DefaultSeatRowWidth is how many seats a picker row holds.
const DefaultSeatRowWidth = 10

// SeatGrid lays seats out in rows of width, keeping API order.
func SeatGrid(seats []models.Seat, width int) [][]models.Seat {
	if width <= 0 {
		width = DefaultSeatRowWidth
	}

	rows := make([][]models.Seat, 0, (len(seats)+width-1)/width)
	for start := 0; start < len(seats); start += width {
		rows = append(rows, seats[start:min(start+width, len(seats))])
	}
	return rows
}

// SeatHall is the theater named by the seats, shown as "Select a Seat in <hall>".
func SeatHall(seats []models.Seat) string {
	if len(seats) == 0 {
		return ""
	}
	return seats[0].Theater
}

// Receipt is what the purchase confirmation shows.
type Receipt struct {
	Projection string
	DateTime   models.Time
	Seat       string
	Price      float64
}

// NewReceipt summarizes buying seatID for p.
func NewReceipt(p models.Projection, seats []models.Seat, seatID int) Receipt {
	r := Receipt{Projection: p.MovieTitle, DateTime: p.DateTime, Price: p.Price}
	if seat, ok := models.FindSeat(seats, seatID); ok {
		r.Seat = seat.Number.String()
	}
	return r
}
