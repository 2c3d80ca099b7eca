package models

import (
	"fmt"
	"time"
)

// Session kinds: one CLI session per machine, many browser sessions.
const (
	SessionCLI = "cli"
	SessionWeb = "web"
)

// Session is the persisted auth context: the bearer token plus the role and username issued with it.
type Session struct {
	id        string
	sequence  int
	kind      string
	token     string
	role      string
	username  string
	expiresAt *time.Time
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewSession creates a session of kind for the given login result.
func NewSession(sequence int, kind string, login LoginResponse) *Session {
	now := time.Now()
	return &Session{
		sequence:  sequence,
		kind:      kind,
		token:     login.Token,
		role:      login.Role,
		username:  login.Username,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Session) ID() string            { return s.id }
func (s *Session) Sequence() int         { return s.sequence }
func (s *Session) Kind() string          { return s.kind }
func (s *Session) Token() string         { return s.token }
func (s *Session) Role() string          { return s.role }
func (s *Session) Username() string      { return s.username }
func (s *Session) ExpiresAt() *time.Time { return s.expiresAt }
func (s *Session) CreatedAt() time.Time  { return s.createdAt }
func (s *Session) UpdatedAt() time.Time  { return s.updatedAt }
func (s *Session) DeletedAt() *time.Time { return s.deletedAt }

func (s *Session) SetID(id string)           { s.id = id }
func (s *Session) SetSequence(seq int)       { s.sequence = seq }
func (s *Session) SetRole(role string)       { s.role = role }
func (s *Session) SetExpiresAt(t *time.Time) { s.expiresAt = t }
func (s *Session) SetCreatedAt(t time.Time)  { s.createdAt = t }
func (s *Session) SetUpdatedAt(t time.Time)  { s.updatedAt = t }
func (s *Session) SetDeletedAt(t *time.Time) { s.deletedAt = t }

// Expired reports whether the session has an expiry at or before now.
func (s *Session) Expired(now time.Time) bool {
	return s.expiresAt != nil && !s.expiresAt.After(now)
}

// Validate checks the session has a kind and a token.
func (s *Session) Validate() error {
	if s.kind != SessionCLI && s.kind != SessionWeb {
		return fmt.Errorf("invalid session kind %q", s.kind)
	}
	if s.token == "" {
		return fmt.Errorf("session token is required")
	}
	return nil
}
