// Package models defines the cinema DTOs exchanged with the REST API and the few entities marquee persists itself.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): mirrors of API JSON with no invariants beyond decoding
//   - [Movie], [MovieInput] : catalog entries and the admin add/edit payload
//   - [Projection], [ProjectionInput] : scheduled showings and the admin add payload
//   - [ProjectionType], [Theater] : lookup lists used by filters and forms
//   - [Seat], [TicketPurchase], [Ticket] : the seat picker, the buy payload and bought tickets
//   - [User], [LoginRequest], [LoginResponse], [RegisterRequest] : accounts and authentication
//   - [MovieQuery], [ProjectionQuery], [UserQuery] : list filters rendered as query strings
//
// 2. Persistent Entities: database-backed models with full lifecycle management
//   - [Session] : the auth context (token, role, username) for the CLI or a browser
//
// Collections from the API arrive wrapped in a "$values" envelope; [Values] unwraps them.
// All persistent entities implement the [Model] interface and are stored through a [Repository].
package models
