// Package server provides HTTP routing and middleware for the browser front end.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] runs in the order it was added: the first one registered is the outermost wrapper.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /movies/{id}"), so
// unknown methods on a known path answer 405 and path values are read with [http.Request.PathValue].
//
// # Middleware
//
//   - [RequestID] tags each request with an X-Request-ID (client supplied or a new uuid)
//   - [Logger] logs method, path, status and latency with charmbracelet/log
//   - [Recover] turns handler panics into 500 responses
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Lifecycle
//
// [Serve] runs an [http.Server] until its context is canceled, then shuts it down gracefully.
package server
