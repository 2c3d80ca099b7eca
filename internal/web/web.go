// Package web serves the browser front end: server-rendered pages over the cinema API.
//
// # Routes
//
//	GET  /                          projections table (filters, sort, pages); admins add projections here
//	POST /projections               add a projection (admin)
//	GET  /projections/{id}          projection detail and seat picker
//	POST /projections/{id}/buy      buy the selected seat (user)
//	POST /projections/{id}/delete   delete a projection (admin)
//	GET  /movies                    movies table (filters, sort toggle); admins add movies here
//	POST /movies                    add a movie (admin)
//	GET  /movies/{id}               movie detail
//	GET  /movies/projections/{id}   projections of one movie (logged in)
//	GET  /movies/edit/{id}          edit form (admin), POST saves it
//	POST /movies/delete/{id}        delete a movie (admin)
//	GET  /login, /register          forms, POST submits them
//	GET  /logout, POST /logout      end the session
//	GET  /user                      own info and tickets; POST /user/password changes the password
//	GET  /admin                     users (search, sort, delete)
//	POST /admin/{userId}/delete     delete a user
//	GET  /admin/{userId}            a user's info and tickets; POST /admin/{userId}/role changes the role
//
// # Sessions
//
// A login creates a web session row through [auth.Store]; the browser only holds its id in a cookie.
// The bearer token never leaves the server. One-shot messages ("Login successful!") travel in a
// flash cookie across the redirect that follows a form post.
package web

import (
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/server"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/views"
)

// Options configures [New].
type Options struct {
	Cinema        services.Cinema // anonymous client; sessions add their token
	Sessions      *auth.Store
	Logger        *log.Logger
	UI            shared.UIConfig
	SessionTTL    time.Duration // used when a token carries no expiry
	SecureCookies bool          // set the Secure flag (serving behind TLS)
}

// App is the browser front end.
type App struct {
	cinema    services.Cinema
	sessions  *auth.Store
	logger    *log.Logger
	perPage   int
	seatWidth int
	ttl       time.Duration
	secure    bool
	pages     map[string]*template.Template
	now       func() time.Time
}

// New parses the page templates and returns the app.
func New(opts Options) (*App, error) {
	if opts.Cinema == nil || opts.Sessions == nil {
		return nil, fmt.Errorf("%w: web front end needs a cinema client and a session store", shared.ErrMissingArgument)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	a := &App{
		cinema:    opts.Cinema,
		sessions:  opts.Sessions,
		logger:    opts.Logger,
		perPage:   opts.UI.ProjectionsPerPage,
		seatWidth: opts.UI.SeatRowWidth,
		ttl:       opts.SessionTTL,
		secure:    opts.SecureCookies,
		pages:     pages,
		now:       time.Now,
	}
	if a.perPage <= 0 {
		a.perPage = views.DefaultPerPage
	}
	if a.seatWidth <= 0 {
		a.seatWidth = views.DefaultSeatRowWidth
	}
	return a, nil
}

// Routes registers every page on r.
func (a *App) Routes(r *server.BasicRouter) {
	r.HandleFunc("GET", "/{$}", a.handleProjections)
	r.HandleFunc("POST", "/projections", a.requireAdmin(a.handleAddProjection))
	r.HandleFunc("GET", "/projections/{id}", a.handleProjection)
	r.HandleFunc("POST", "/projections/{id}/buy", a.requireUser(a.handleBuyTicket))
	r.HandleFunc("POST", "/projections/{id}/delete", a.requireAdmin(a.handleDeleteProjection))

	r.HandleFunc("GET", "/movies", a.handleMovies)
	r.HandleFunc("POST", "/movies", a.requireAdmin(a.handleAddMovie))
	r.HandleFunc("GET", "/movies/{id}", a.handleMovie)
	r.HandleFunc("GET", "/movies/projections/{id}", a.requireAuth(a.handleMovieProjections))
	r.HandleFunc("GET", "/movies/edit/{id}", a.requireAdmin(a.handleEditMovieForm))
	r.HandleFunc("POST", "/movies/edit/{id}", a.requireAdmin(a.handleEditMovie))
	r.HandleFunc("POST", "/movies/delete/{id}", a.requireAdmin(a.handleDeleteMovie))

	r.HandleFunc("GET", "/login", a.handleLoginForm)
	r.HandleFunc("POST", "/login", a.handleLogin)
	r.HandleFunc("GET", "/register", a.handleRegisterForm)
	r.HandleFunc("POST", "/register", a.handleRegister)
	r.HandleFunc("GET", "/logout", a.handleLogout)
	r.HandleFunc("POST", "/logout", a.handleLogout)

	r.HandleFunc("GET", "/user", a.requireAuth(a.handleUserPage))
	r.HandleFunc("POST", "/user/password", a.requireAuth(a.handleChangePassword))

	r.HandleFunc("GET", "/admin", a.requireAdmin(a.handleAdminPage))
	r.HandleFunc("POST", "/admin/{userId}/delete", a.requireAdmin(a.handleDeleteUser))
	r.HandleFunc("GET", "/admin/{userId}", a.requireAdmin(a.handleAdminUser))
	r.HandleFunc("POST", "/admin/{userId}/role", a.requireAdmin(a.handleUpdateRole))

	r.Handler(staticHandler{})
}

// Handler returns the app behind the request id, logging and recovery middleware.
func (a *App) Handler() http.Handler {
	r := server.NewBasicRouter()
	r.Use(server.RequestID, server.Logger(a.logger), server.Recover(a.logger))
	a.Routes(r)
	return r
}
