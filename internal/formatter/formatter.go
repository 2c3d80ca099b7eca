// package formatter exports tickets and movies to CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// ParseFormat accepts the --format flag values.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatMarkdown, FormatText, FormatJSON:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	case "text", "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (csv, md, txt, json)", shared.ErrInvalidFlag, s)
	}
}

// TicketExport is a titled list of tickets, e.g. "ana's tickets".
type TicketExport struct {
	Title   string
	Tickets []models.Ticket
}

// Total sums the ticket prices.
func (e TicketExport) Total() float64 {
	return models.TicketsTotal(e.Tickets)
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// TicketsToCSV writes columns ID, Movie, Date, Type, Theater, Seat, Price. Dates are RFC 3339.
func TicketsToCSV(export TicketExport) ([]byte, error) {
	rows := make([][]string, 0, len(export.Tickets))
	for _, t := range export.Tickets {
		date := ""
		if !t.ProjectionDateTime.IsZero() {
			date = t.ProjectionDateTime.Format("2006-01-02T15:04:05Z07:00")
		}
		rows = append(rows, []string{
			strconv.Itoa(t.ID),
			t.ProjectionMovieTitle,
			date,
			t.ProjectionType,
			t.Theater,
			t.Seat.String(),
			shared.FormatPrice(t.Price),
		})
	}
	return writeCSV([]string{"ID", "Movie", "Date", "Type", "Theater", "Seat", "Price"}, rows)
}

// TicketsToMarkdown renders a heading, a summary and a ticket table.
func TicketsToMarkdown(export TicketExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Title)
	fmt.Fprintf(&buf, "**Tickets**: %d\n", len(export.Tickets))
	fmt.Fprintf(&buf, "**Total**: %s\n\n", shared.FormatPrice(export.Total()))

	if len(export.Tickets) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| Movie | Date and Time | Type | Theater | Seat | Price |\n")
	buf.WriteString("|---|---|---|---|---|---|\n")
	for _, t := range export.Tickets {
		fmt.Fprintf(&buf, "| %s | %s | %s | %s | %s | %s |\n",
			escapeCell(t.ProjectionMovieTitle),
			shared.FormatDateTime(t.ProjectionDateTime.Time),
			escapeCell(t.ProjectionType),
			escapeCell(t.Theater),
			escapeCell(t.Seat.String()),
			shared.FormatPrice(t.Price),
		)
	}
	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// TicketsToText renders one numbered line per ticket.
func TicketsToText(export TicketExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", export.Title)
	fmt.Fprintf(&buf, "Tickets: %d, total %s\n\n", len(export.Tickets), shared.FormatPrice(export.Total()))

	for i, t := range export.Tickets {
		fmt.Fprintf(&buf, "%d. %s - %s, %s, seat %s (%s)\n",
			i+1, t.ProjectionMovieTitle, shared.FormatDateTime(t.ProjectionDateTime.Time), t.Theater, t.Seat, shared.FormatPrice(t.Price))
	}
	return buf.Bytes(), nil
}

// MoviesToCSV writes one row per movie.
func MoviesToCSV(movies []models.Movie) ([]byte, error) {
	rows := make([][]string, 0, len(movies))
	for _, m := range movies {
		rows = append(rows, []string{
			strconv.Itoa(m.ID),
			m.Title,
			m.Director,
			m.Actors,
			m.Genre,
			strconv.Itoa(m.Duration),
			m.Distributor,
			m.CountryOrigin,
			strconv.Itoa(m.ReleaseYear),
		})
	}
	return writeCSV([]string{"ID", "Title", "Director", "Actors", "Genre", "Duration", "Distributor", "Country", "Year"}, rows)
}

// MoviesToMarkdown renders a movie table.
func MoviesToMarkdown(movies []models.Movie) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# Movies\n\n")
	buf.WriteString("| Title | Genre | Duration | Distributor | Country | Year |\n")
	buf.WriteString("|---|---|---|---|---|---|\n")
	for _, m := range movies {
		fmt.Fprintf(&buf, "| %s | %s | %d min | %s | %s | %d |\n",
			escapeCell(m.Title), escapeCell(m.Genre), m.Duration, escapeCell(m.Distributor), escapeCell(m.CountryOrigin), m.ReleaseYear)
	}
	return buf.Bytes(), nil
}

// MoviesToText renders one line per movie.
func MoviesToText(movies []models.Movie) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Movies: %d\n\n", len(movies))
	for i, m := range movies {
		fmt.Fprintf(&buf, "%d. %s (%d) - %s, %d min\n", i+1, m.Title, m.ReleaseYear, m.Genre, m.Duration)
	}
	return buf.Bytes(), nil
}

// Tickets renders export in format.
func Tickets(export TicketExport, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return TicketsToCSV(export)
	case FormatMarkdown:
		return TicketsToMarkdown(export)
	case FormatJSON:
		return json.MarshalIndent(export.Tickets, "", "  ")
	default:
		return TicketsToText(export)
	}
}

// Movies renders movies in format.
func Movies(movies []models.Movie, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return MoviesToCSV(movies)
	case FormatMarkdown:
		return MoviesToMarkdown(movies)
	case FormatJSON:
		return json.MarshalIndent(movies, "", "  ")
	default:
		return MoviesToText(movies)
	}
}

// DefaultFilename is base with the format's extension.
func DefaultFilename(base string, format Format) string {
	return base + "." + string(format)
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
