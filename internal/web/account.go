package web

import (
	"context"
	"net/http"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/views"
)

func (a *App) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s := a.session(r)
	a.render(w, r, s, view{name: "login.html", title: "User login", data: views.LoginForm{}})
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	s := a.session(r)
	form := views.LoginForm{Username: r.FormValue("username"), Password: r.FormValue("password")}
	req, err := form.Validate()
	form.Password = ""
	if err != nil {
		a.render(w, r, s, view{status: http.StatusBadRequest, name: "login.html", title: "User login", err: err.Error(), data: form})
		return
	}

	resp, err := a.cinema.Login(r.Context(), req)
	if err != nil {
		a.render(w, r, s, view{status: errorStatus(err), name: "login.html", title: "User login", err: err.Error(), data: form})
		return
	}

	if s.Authenticated() {
		if err := a.sessions.Logout(r.Context(), s.ID); err != nil {
			a.logger.Warn("failed to end previous session", "err", err)
		}
	}
	session, err := a.sessions.Login(r.Context(), models.SessionWeb, *resp, a.ttl)
	if err != nil {
		a.fail(w, r, s, err)
		return
	}
	a.setSessionCookie(w, session)
	a.redirect(w, r, "/", "Login successful!")
}

func (a *App) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s := a.session(r)
	a.render(w, r, s, view{name: "register.html", title: "Registration", data: views.RegistrationForm{}})
}

func (a *App) handleRegister(w http.ResponseWriter, r *http.Request) {
	s := a.session(r)
	form := views.RegistrationForm{
		Username:        r.FormValue("username"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("passwordConfirm"),
		Role:            r.FormValue("role"),
	}
	shown := form
	shown.Password, shown.ConfirmPassword = "", ""

	req, err := form.Validate()
	if err != nil {
		a.render(w, r, s, view{status: http.StatusBadRequest, name: "register.html", title: "Registration", err: err.Error(), data: shown})
		return
	}
	if err := a.cinema.Register(r.Context(), req); err != nil {
		a.render(w, r, s, view{status: errorStatus(err), name: "register.html", title: "Registration", err: err.Error(), data: shown})
		return
	}
	a.redirect(w, r, "/login", "Registration successful!")
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if err := a.sessions.Logout(r.Context(), c.Value); err != nil {
			a.logger.Error("failed to log out", "err", err)
		}
	}
	a.clearSessionCookie(w)
	a.redirect(w, r, "/", "")
}

type userData struct {
	User          models.User
	Tickets       []models.Ticket
	Total         float64
	PasswordError string
}

func (a *App) loadUserPage(ctx context.Context, s auth.Session) (userData, error) {
	client := a.client(s)
	u, err := client.UserInfo(ctx, "")
	if err != nil {
		return userData{}, err
	}
	tickets, err := client.MyTickets(ctx)
	if err != nil {
		return userData{}, err
	}
	return userData{User: *u, Tickets: tickets, Total: models.TicketsTotal(tickets)}, nil
}

func (a *App) handleUserPage(w http.ResponseWriter, r *http.Request, s auth.Session) {
	data, err := a.loadUserPage(r.Context(), s)
	if err != nil {
		a.fail(w, r, s, err)
		return
	}
	a.render(w, r, s, view{name: "user.html", title: "User Page", data: data})
}

func (a *App) handleChangePassword(w http.ResponseWriter, r *http.Request, s auth.Session) {
	form := views.PasswordForm{
		Username:        s.Username,
		CurrentPassword: r.FormValue("currentPassword"),
		NewPassword:     r.FormValue("newPassword"),
	}

	req, err := form.Validate()
	if err == nil {
		err = a.client(s).ChangePassword(r.Context(), req)
	}
	if err == nil {
		a.redirect(w, r, "/user", "Password changed successfully!")
		return
	}

	data, loadErr := a.loadUserPage(r.Context(), s)
	if loadErr != nil {
		a.fail(w, r, s, loadErr)
		return
	}
	data.PasswordError = err.Error()
	a.render(w, r, s, view{status: errorStatus(err), name: "user.html", title: "User Page", data: data})
}
