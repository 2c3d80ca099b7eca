// Package services implements clients for the cinema REST API.
//
// # Cinema Interface
//
// [Cinema] is the one abstraction the CLI, the terminal UI and the browser front end share.
// [CinemaService] implements it over HTTP.
//
// # Authentication
//
// Anonymous requests need no credentials. [CinemaService.WithToken] returns a copy whose
// transport is an [oauth2.Transport] over a static bearer token; operations that require a
// token fail with [shared.ErrNotAuthenticated] before any request is sent when none is set.
//
// # Error Handling
//
// Non-2xx responses become an [*APIError] carrying the status and the most specific
// message found in the body:
//   - {"title": ..., "errors": {"field": [...]}} : "title: msg1, msg2"
//   - {"Message": ..., "Errors": [...]}          : "Message\nerr1, err2"
//   - {"message": ...}                           : message
//   - plain text                                 : the text
//
// Otherwise the operation's default message ("Failed to fetch movies") is used.
// An APIError always matches [shared.ErrAPIRequest]; 401, 403 and 404 also match
// [shared.ErrNotAuthenticated], [shared.ErrForbidden] and [shared.ErrNotFound].
//
// # Collections
//
// The API wraps lists in {"$values": [...]} envelopes, decoded by [models.Values].
//
// # Raw Requests
//
// [APIService] sends arbitrary requests and returns the raw response, for `marquee api`.
package services
