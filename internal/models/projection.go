package models

import (
	"net/url"
	"strconv"
	"time"
)

// Projection is a scheduled showing of a movie at a theater, time and price.
type Projection struct {
	ID                 int     `json:"id"`
	MovieID            int     `json:"movieId"`
	MovieTitle         string  `json:"movieTitle"`
	ProjectionTypeID   int     `json:"projectionTypeId,omitempty"`
	ProjectionType     string  `json:"projectionType"`
	TheaterID          int     `json:"theaterId,omitempty"`
	Theater            string  `json:"theater"`
	DateTime           Time    `json:"dateTime"`
	Price              float64 `json:"price"`
	UnsoldTicketsCount int     `json:"unsoldTicketsCount"`
	IsDeleted          bool    `json:"isDeleted"`
}

// Ended reports whether the projection started before now.
func (p Projection) Ended(now time.Time) bool {
	return p.DateTime.Before(now)
}

// SoldOut reports whether no tickets are left.
func (p Projection) SoldOut() bool {
	return p.UnsoldTicketsCount <= 0
}

// Bookable reports whether a ticket can still be bought: the projection is in the future and seats remain.
func (p Projection) Bookable(now time.Time) bool {
	return p.DateTime.After(now) && !p.SoldOut()
}

// ProjectionInput is the body of POST /projections.
type ProjectionInput struct {
	MovieID          int     `json:"movieId"`
	ProjectionTypeID int     `json:"projectionTypeId"`
	TheaterID        int     `json:"theaterId"`
	DateTime         Time    `json:"dateTime"`
	Price            float64 `json:"price"`
}

// ProjectionType is a projection format such as 2D, 3D or IMAX.
type ProjectionType struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

// Theater is a screening room.
type Theater struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// Label is the theater's display name.
func (t Theater) Label() string {
	if t.Type != "" {
		return t.Type
	}
	return t.Name
}

// ActiveProjections drops soft-deleted projections, preserving order.
func ActiveProjections(projections []Projection) []Projection {
	active := make([]Projection, 0, len(projections))
	for _, p := range projections {
		if !p.IsDeleted {
			active = append(active, p)
		}
	}
	return active
}

// Projection sort keys understood by the API.
const (
	ProjectionSortDate  = "date"
	ProjectionSortPrice = "price"
	ProjectionSortTitle = "title"
)

// ProjectionSortFields lists the sortable projection columns in display order.
var ProjectionSortFields = []string{ProjectionSortDate, ProjectionSortPrice, ProjectionSortTitle}

// ProjectionQuery filters GET /projections.
type ProjectionQuery struct {
	MovieTitle       string
	DateFrom         string // YYYY-MM-DD
	DateTo           string // YYYY-MM-DD
	ProjectionTypeID string
	TheaterID        string
	PriceFrom        string
	PriceTo          string
	SortBy           string
	SortDescending   bool
}

// Values renders q with the API's parameter names. Empty filters are omitted; sortDescending is always sent.
func (q ProjectionQuery) Values() url.Values {
	v := url.Values{}
	setIf(v, "movieTitle", q.MovieTitle)
	setIf(v, "dateFrom", q.DateFrom)
	setIf(v, "dateTo", q.DateTo)
	setIf(v, "projectionTypeId", q.ProjectionTypeID)
	setIf(v, "theaterId", q.TheaterID)
	setIf(v, "priceFrom", q.PriceFrom)
	setIf(v, "priceTo", q.PriceTo)
	setIf(v, "sortBy", q.SortBy)
	v.Set("sortDescending", strconv.FormatBool(q.SortDescending))
	return v
}

// ProjectionQueryFromValues reads a ProjectionQuery back from API-style parameters.
func ProjectionQueryFromValues(v url.Values) ProjectionQuery {
	desc, _ := strconv.ParseBool(v.Get("sortDescending"))
	return ProjectionQuery{
		MovieTitle:       v.Get("movieTitle"),
		DateFrom:         v.Get("dateFrom"),
		DateTo:           v.Get("dateTo"),
		ProjectionTypeID: v.Get("projectionTypeId"),
		TheaterID:        v.Get("theaterId"),
		PriceFrom:        v.Get("priceFrom"),
		PriceTo:          v.Get("priceTo"),
		SortBy:           v.Get("sortBy"),
		SortDescending:   desc,
	}
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
