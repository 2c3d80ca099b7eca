// Package views holds the view-state rules shared by the command line, the terminal UI and the
// browser front end: pagination, sort toggles, which links and row actions a session sees, form
// validation, and the seat picker layout.
//
// Nothing here performs I/O. Front ends fetch with [services.Cinema] and feed the results through
// these functions, so every front end paginates, sorts and gates actions the same way.
package views
