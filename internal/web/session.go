package web

import (
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/services"
)

const (
	sessionCookie = "marquee_session"
	flashCookie   = "marquee_flash"
)

// sessionHandler is a handler that needs the caller's session.
type sessionHandler func(w http.ResponseWriter, r *http.Request, s auth.Session)

// session resolves the session cookie. Unknown, expired or unreadable sessions are anonymous.
func (a *App) session(r *http.Request) auth.Session {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return auth.Anonymous
	}
	s, err := a.sessions.Get(r.Context(), c.Value)
	if err != nil {
		a.logger.Error("failed to load session", "err", err)
		return auth.Anonymous
	}
	return s
}

// client returns the cinema client acting for s.
func (a *App) client(s auth.Session) services.Cinema {
	return a.cinema.WithToken(s.Token)
}

func (a *App) setSessionCookie(w http.ResponseWriter, s auth.Session) {
	c := &http.Cookie{
		Name:     sessionCookie,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if s.ExpiresAt != nil {
		c.Expires = *s.ExpiresAt
	}
	http.SetCookie(w, c)
}

func (a *App) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// redirect sends the browser to path with a one-shot message shown on the next page.
func (a *App) redirect(w http.ResponseWriter, r *http.Request, path, flash string) {
	if flash != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookie,
			Value:    url.QueryEscape(flash),
			Path:     "/",
			HttpOnly: true,
			Secure:   a.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// takeFlash reads and clears the flash message.
func (a *App) takeFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	msg, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return msg
}

// requireAuth sends anonymous visitors to the login page.
func (a *App) requireAuth(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := a.session(r)
		if !s.Authenticated() {
			a.redirect(w, r, "/login", "Please log in first")
			return
		}
		next(w, r, s)
	}
}

// requireUser admits sessions with the User role.
func (a *App) requireUser(next sessionHandler) http.HandlerFunc {
	return a.requireRole(next, auth.Session.IsUser)
}

// requireAdmin admits sessions with the Admin role.
func (a *App) requireAdmin(next sessionHandler) http.HandlerFunc {
	return a.requireRole(next, auth.Session.IsAdmin)
}

func (a *App) requireRole(next sessionHandler, allowed func(auth.Session) bool) http.HandlerFunc {
	return a.requireAuth(func(w http.ResponseWriter, r *http.Request, s auth.Session) {
		if !allowed(s) {
			a.renderError(w, r, s, http.StatusForbidden, "You are not allowed to view this page")
			return
		}
		next(w, r, s)
	})
}
