package web

import (
	"context"
	"net/http"
	"net/url"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/views"
)

type adminData struct {
	Query models.UserQuery
	Users []models.User
}

func (a *App) handleAdminPage(w http.ResponseWriter, r *http.Request, s auth.Session) {
	q := models.UserQueryFromValues(r.URL.Query())
	users, err := a.client(s).Users(r.Context(), q)
	if err != nil {
		a.fail(w, r, s, err)
		return
	}
	a.render(w, r, s, view{name: "admin.html", title: "Users", data: adminData{Query: q, Users: users}})
}

func (a *App) handleDeleteUser(w http.ResponseWriter, r *http.Request, s auth.Session) {
	if err := a.client(s).DeleteUser(r.Context(), r.PathValue("userId")); err != nil {
		a.fail(w, r, s, err)
		return
	}
	a.redirect(w, r, "/admin", "User deleted")
}

type adminUserData struct {
	User    models.User
	Tickets []models.Ticket
	Total   float64
	Roles   []string
}

func (a *App) loadAdminUser(ctx context.Context, s auth.Session, userID string) (adminUserData, error) {
	client := a.client(s)
	u, err := client.UserInfo(ctx, userID)
	if err != nil {
		return adminUserData{}, err
	}
	tickets, err := client.UserTickets(ctx, userID)
	if err != nil {
		return adminUserData{}, err
	}
	return adminUserData{
		User:    *u,
		Tickets: tickets,
		Total:   models.TicketsTotal(tickets),
		Roles:   []string{models.RoleUser, models.RoleAdmin},
	}, nil
}

func (a *App) handleAdminUser(w http.ResponseWriter, r *http.Request, s auth.Session) {
	data, err := a.loadAdminUser(r.Context(), s, r.PathValue("userId"))
	if err != nil {
		a.fail(w, r, s, err)
		return
	}
	a.render(w, r, s, view{name: "admin_user.html", title: data.User.Username, data: data})
}

func (a *App) handleUpdateRole(w http.ResponseWriter, r *http.Request, s auth.Session) {
	userID := r.PathValue("userId")
	ctx := r.Context()

	data, err := a.loadAdminUser(ctx, s, userID)
	if err != nil {
		a.fail(w, r, s, err)
		return
	}

	req, err := views.RoleForm{Username: data.User.Username, Role: r.FormValue("role")}.Validate()
	if err == nil {
		err = a.client(s).UpdateRole(ctx, req)
	}
	if err != nil {
		a.render(w, r, s, view{status: errorStatus(err), name: "admin_user.html", title: data.User.Username, err: err.Error(), data: data})
		return
	}

	if req.Username == s.Username {
		if err := a.sessions.UpdateRole(ctx, s.ID, req.Role); err != nil {
			a.logger.Warn("failed to update session role", "err", err)
		}
	}
	a.redirect(w, r, "/admin/"+url.PathEscape(userID), "Role updated")
}
