// Package ui implements the interactive terminal front end using bubbletea's Elm architecture.
//
// Views:
//  1. [ProjectionListView] : projections, a page at a time
//  2. [SeatView] : seat picker for the selected projection
//  3. [ConfirmView] : confirm buying the highlighted seat
//  4. [ResultView] : the receipt, or why the purchase failed
//  5. [MovieListView] and [MovieDetailView] : movies and a movie's projections
//  6. [TicketsView] : the logged-in user's tickets
//
// The [Model] talks to the cinema API through [services.Cinema] on behalf of one [auth.Session].
// API calls run as [tea.Cmd]s and come back as [Msg] values.
//
// Keyboard navigation uses vim-style bindings (h/j/k/l, enter, esc, y/n, q) with contextual
// help rendered by charmbracelet/bubbles/help.
package ui
