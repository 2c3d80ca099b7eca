package views

import (
	"fmt"
	"time"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/models"
)

// AppName is the brand shown in the header; it links home.
const AppName = "Movies App"

// Link is a navigation entry.
type Link struct {
	Label string
	Href  string
}

// NavLinks returns the header links for s, home first.
func NavLinks(s auth.Session) []Link {
	links := []Link{{Label: AppName, Href: "/"}}

	if !s.Authenticated() {
		links = append(links, Link{"Register", "/register"}, Link{"Login", "/login"})
	} else {
		links = append(links, Link{"Logout", "/logout"})
	}
	if s.IsUser() {
		links = append(links, Link{"User Page", "/user"})
	}
	if s.IsAdmin() {
		links = append(links, Link{"Administrator Page", "/admin"})
	}

	return append(links, Link{"Movies", "/movies"})
}

// ActionKind is what a projection row offers its viewer.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionDelete
	ActionBuy
	ActionEnded
	ActionSoldOut
)

// Action is the content of a projection row's action cell.
type Action struct {
	Kind  ActionKind
	Label string
	Href  string
}

// ProjectionAction decides a projection row's action for s at now.
//
// Admins delete. Users see "Projection has ended", "No tickets available" or a buy link.
// Anonymous viewers get no action column.
func ProjectionAction(s auth.Session, p models.Projection, now time.Time) Action {
	switch {
	case s.IsAdmin():
		return Action{Kind: ActionDelete, Label: "Delete", Href: fmt.Sprintf("/projections/%d/delete", p.ID)}
	case !s.IsUser():
		return Action{Kind: ActionNone}
	case p.Ended(now):
		return Action{Kind: ActionEnded, Label: "Projection has ended"}
	case p.SoldOut():
		return Action{Kind: ActionSoldOut, Label: "No tickets available"}
	default:
		return Action{Kind: ActionBuy, Label: "Buy a Ticket", Href: fmt.Sprintf("/projections/%d", p.ID)}
	}
}

// ShowActionColumn reports whether the projections table has an action column for s.
func ShowActionColumn(s auth.Session) bool {
	return s.IsAdmin() || s.IsUser()
}

// Posts reports whether the action submits a form instead of following a link.
func (a Action) Posts() bool { return a.Kind == ActionDelete }
