package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"time"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/views"
)

//go:embed templates/*.html static/*
var assets embed.FS

// layout files are parsed into every page.
var layout = []string{"templates/base.html", "templates/partials.html"}

var funcs = template.FuncMap{
	"price": shared.FormatPrice,
	"datetime": func(t models.Time) string {
		return shared.FormatDateTime(t.Time)
	},
	"datetimeLocal": func(t models.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2006-01-02T15:04")
	},
	"indicator": views.Indicator,
}

func parsePages() (map[string]*template.Template, error) {
	files, err := fs.Glob(assets, "templates/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template)
	for _, file := range files {
		name := path.Base(file)
		if name == "base.html" || name == "partials.html" {
			continue
		}
		t, err := template.New(name).Funcs(funcs).ParseFS(assets, append(layout, file)...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// page is what every template receives.
type page struct {
	Title   string
	Session auth.Session
	Nav     []views.Link
	Flash   string
	Error   string
	Now     time.Time
	Data    any
}

// view describes one render.
type view struct {
	status int
	name   string
	title  string
	err    string
	data   any
}

func (a *App) render(w http.ResponseWriter, r *http.Request, s auth.Session, v view) {
	t, ok := a.pages[v.name]
	if !ok {
		a.logger.Error("missing template", "name", v.name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	p := page{
		Title:   v.title,
		Session: s,
		Nav:     views.NavLinks(s),
		Flash:   a.takeFlash(w, r),
		Error:   v.err,
		Now:     a.now(),
		Data:    v.data,
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", p); err != nil {
		a.logger.Error("failed to render", "template", v.name, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	status := v.status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// renderError shows "Error: msg" as the whole page.
func (a *App) renderError(w http.ResponseWriter, r *http.Request, s auth.Session, status int, msg string) {
	a.render(w, r, s, view{status: status, name: "error.html", title: "Error", err: msg})
}

// fail renders err as a page, picking the status from the error.
func (a *App) fail(w http.ResponseWriter, r *http.Request, s auth.Session, err error) {
	a.renderError(w, r, s, errorStatus(err), err.Error())
}

// errorStatus maps an error to the HTTP status of the page reporting it.
func errorStatus(err error) int {
	var apiErr *services.APIError
	var invalid *views.ValidationError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		return apiErr.Status
	case errors.As(err, &invalid), errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrMissingArgument), errors.Is(err, shared.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotAuthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

// staticHandler serves the embedded stylesheet.
type staticHandler struct{}

func (staticHandler) Routes() []string { return []string{"GET /static/"} }

func (staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	http.FileServerFS(assets).ServeHTTP(w, r)
}
