package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/shared"
)

// Store persists sessions through a [repositories.SessionRepository].
type Store struct {
	repo   *repositories.SessionRepository
	logger *log.Logger
	now    func() time.Time
}

// NewStore creates a store over repo.
func NewStore(repo *repositories.SessionRepository, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{repo: repo, logger: logger, now: time.Now}
}

// Login records a session of kind for a successful login.
//
// A "cli" login replaces any previous CLI session. The role falls back to the token's role claim
// and the expiry to the token's exp claim, or now+fallbackTTL when the token has none.
func (st *Store) Login(ctx context.Context, kind string, login models.LoginResponse, fallbackTTL time.Duration) (Session, error) {
	if login.Token == "" {
		return Anonymous, fmt.Errorf("%w: login returned no token", shared.ErrAuthFailed)
	}

	claims, err := PeekClaims(login.Token)
	if err != nil {
		st.logger.Debug("token is not a JWT; using fallback expiry", "err", err)
	}

	if login.Role == "" {
		login.Role = claims.Role
	}
	if role := models.NormalizeRole(login.Role); role != "" {
		login.Role = role
	}
	if login.Username == "" {
		login.Username = claims.Username
	}

	expiresAt := claims.ExpiresAt
	if expiresAt == nil && fallbackTTL > 0 {
		t := st.now().Add(fallbackTTL)
		expiresAt = &t
	}

	if kind == models.SessionCLI {
		if _, err := st.repo.DeleteKind(ctx, models.SessionCLI); err != nil {
			return Anonymous, err
		}
	}

	s := models.NewSession(0, kind, login)
	s.SetExpiresAt(expiresAt)
	if err := st.repo.Create(ctx, s); err != nil {
		return Anonymous, fmt.Errorf("failed to save session: %w", err)
	}

	st.logger.Info("logged in", "kind", kind, "username", login.Username, "role", login.Role)
	return FromModel(s), nil
}

// Current returns the latest live session of kind, or [Anonymous].
//
// Expired sessions are deleted and read as logged out.
func (st *Store) Current(ctx context.Context, kind string) (Session, error) {
	s, err := st.repo.Latest(ctx, kind)
	if errors.Is(err, shared.ErrNotFound) {
		return Anonymous, nil
	}
	if err != nil {
		return Anonymous, err
	}
	return st.live(ctx, s)
}

// Get returns the live session with id, or [Anonymous] when it is missing or expired.
func (st *Store) Get(ctx context.Context, id string) (Session, error) {
	if id == "" {
		return Anonymous, nil
	}
	s, err := st.repo.Get(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return Anonymous, nil
	}
	if err != nil {
		return Anonymous, err
	}
	return st.live(ctx, s)
}

func (st *Store) live(ctx context.Context, s *models.Session) (Session, error) {
	if !s.Expired(st.now()) {
		return FromModel(s), nil
	}
	st.logger.Debug("session expired", "id", s.ID(), "username", s.Username())
	if err := st.repo.Delete(ctx, s.ID()); err != nil && !errors.Is(err, shared.ErrNotFound) {
		return Anonymous, err
	}
	return Anonymous, nil
}

// Logout deletes the session with id. Logging out twice is not an error.
func (st *Store) Logout(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	err := st.repo.Delete(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	return err
}

// LogoutKind deletes every session of kind.
func (st *Store) LogoutKind(ctx context.Context, kind string) error {
	n, err := st.repo.DeleteKind(ctx, kind)
	if err != nil {
		return err
	}
	st.logger.Info("logged out", "kind", kind, "sessions", n)
	return nil
}

// UpdateRole changes the stored role of a live session, e.g. after an admin edits the current user.
func (st *Store) UpdateRole(ctx context.Context, id, role string) error {
	s, err := st.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	s.SetRole(role)
	return st.repo.Update(ctx, s)
}

// Prune deletes expired sessions.
func (st *Store) Prune(ctx context.Context) (int64, error) {
	return st.repo.DeleteExpired(ctx, st.now())
}
