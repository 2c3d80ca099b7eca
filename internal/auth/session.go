package auth

import (
	"time"

	"github.com/desertthunder/marquee/internal/models"
)

// Session is the auth context seen by the front ends. The zero value is anonymous.
type Session struct {
	ID        string
	Sequence  int
	Token     string
	Role      string
	Username  string
	ExpiresAt *time.Time
}

// Anonymous is the logged-out session.
var Anonymous = Session{}

// FromModel converts a persisted session.
func FromModel(s *models.Session) Session {
	if s == nil {
		return Anonymous
	}
	return Session{
		ID:        s.ID(),
		Sequence:  s.Sequence(),
		Token:     s.Token(),
		Role:      s.Role(),
		Username:  s.Username(),
		ExpiresAt: s.ExpiresAt(),
	}
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool { return s.Token != "" }

// IsAdmin reports whether the session belongs to an administrator.
func (s Session) IsAdmin() bool { return s.Authenticated() && s.Role == models.RoleAdmin }

// IsUser reports whether the session belongs to a regular user.
func (s Session) IsUser() bool { return s.Authenticated() && s.Role == models.RoleUser }

// Expired reports whether the session has an expiry at or before now.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}

// String describes the session for status output.
func (s Session) String() string {
	if !s.Authenticated() {
		return "not logged in"
	}
	return s.Username + " (" + s.Role + ")"
}
