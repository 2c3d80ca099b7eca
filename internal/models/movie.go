package models

import "net/url"

// Movie is a catalog entry.
type Movie struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Director      string `json:"director"`
	Actors        string `json:"actors"`
	Genre         string `json:"genre"`
	Duration      int    `json:"duration"` // minutes
	Distributor   string `json:"distributor"`
	CountryOrigin string `json:"countryOrigin"`
	ReleaseYear   int    `json:"releaseYear"`
	Description   string `json:"description"`
	IsDeleted     bool   `json:"isDeleted"`
}

// Input returns the add/edit payload carrying m's editable fields.
func (m Movie) Input() MovieInput {
	return MovieInput{
		ID:            m.ID,
		Title:         m.Title,
		Director:      m.Director,
		Actors:        m.Actors,
		Genre:         m.Genre,
		Duration:      m.Duration,
		Distributor:   m.Distributor,
		CountryOrigin: m.CountryOrigin,
		ReleaseYear:   m.ReleaseYear,
		Description:   m.Description,
	}
}

// MovieInput is the body of POST /movies and PUT /movies/{id}. ID is zero when creating.
type MovieInput struct {
	ID            int    `json:"id,omitempty"`
	Title         string `json:"title"`
	Director      string `json:"director"`
	Actors        string `json:"actors"`
	Genre         string `json:"genre"`
	Duration      int    `json:"duration"`
	Distributor   string `json:"distributor"`
	CountryOrigin string `json:"countryOrigin"`
	ReleaseYear   int    `json:"releaseYear"`
	Description   string `json:"description"`
}

// ActiveMovies drops soft-deleted movies, preserving order.
func ActiveMovies(movies []Movie) []Movie {
	active := make([]Movie, 0, len(movies))
	for _, m := range movies {
		if !m.IsDeleted {
			active = append(active, m)
		}
	}
	return active
}

// Movie sort keys understood by the API. A "_desc" suffix reverses the order.
const (
	MovieSortTitle       = "title"
	MovieSortGenre       = "genre"
	MovieSortDuration    = "duration"
	MovieSortDistributor = "distributor"
	MovieSortCountry     = "country"
	MovieSortYear        = "year"
)

// MovieSortFields lists the sortable movie columns in display order.
var MovieSortFields = []string{
	MovieSortTitle, MovieSortGenre, MovieSortDuration, MovieSortDistributor, MovieSortCountry, MovieSortYear,
}

// MovieQuery filters GET /movies.
type MovieQuery struct {
	Title        string
	Genre        string
	Distributor  string
	Country      string
	DurationFrom string
	DurationTo   string
	YearFrom     string
	YearTo       string
	SortOrder    string // e.g. "title" or "title_desc"
}

// Values renders q with the API's parameter names, omitting empty filters.
func (q MovieQuery) Values() url.Values {
	v := url.Values{}
	setIf(v, "titleFilter", q.Title)
	setIf(v, "genreFilter", q.Genre)
	setIf(v, "distributorFilter", q.Distributor)
	setIf(v, "countryFilter", q.Country)
	setIf(v, "durationFrom", q.DurationFrom)
	setIf(v, "durationTo", q.DurationTo)
	setIf(v, "yearFromFilter", q.YearFrom)
	setIf(v, "yearToFilter", q.YearTo)
	setIf(v, "sortOrder", q.SortOrder)
	return v
}

// MovieQueryFromValues reads a MovieQuery back from API-style parameters (used by the browser front end).
func MovieQueryFromValues(v url.Values) MovieQuery {
	return MovieQuery{
		Title:        v.Get("titleFilter"),
		Genre:        v.Get("genreFilter"),
		Distributor:  v.Get("distributorFilter"),
		Country:      v.Get("countryFilter"),
		DurationFrom: v.Get("durationFrom"),
		DurationTo:   v.Get("durationTo"),
		YearFrom:     v.Get("yearFromFilter"),
		YearTo:       v.Get("yearToFilter"),
		SortOrder:    v.Get("sortOrder"),
	}
}
