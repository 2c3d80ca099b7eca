package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

const sessionColumns = "id, sequence, kind, token, role, username, expires_at, created_at, updated_at, deleted_at"

// SessionRepository implements [models.Repository] for [models.Session] persistence.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session with a generated ID and sequence.
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "sessions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	s.SetID(shared.GenerateID())
	s.SetSequence(sequence)

	query := `
		INSERT INTO sessions (id, sequence, kind, token, role, username, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		s.ID(), s.Sequence(), s.Kind(), s.Token(), s.Role(), s.Username(),
		nullTime(s.ExpiresAt()), s.CreatedAt(), s.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// Get retrieves a live session by ID.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	query := "SELECT " + sessionColumns + " FROM sessions WHERE id = ? AND deleted_at IS NULL"

	s, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: session %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return s, nil
}

// Latest returns the most recent live session of kind.
func (r *SessionRepository) Latest(ctx context.Context, kind string) (*models.Session, error) {
	query := "SELECT " + sessionColumns + " FROM sessions WHERE kind = ? AND deleted_at IS NULL ORDER BY sequence DESC LIMIT 1"

	s, err := scanSession(r.db.QueryRowContext(ctx, query, kind))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no %s session", shared.ErrNotFound, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return s, nil
}

// Update rewrites the role, username and expiry of a live session.
func (r *SessionRepository) Update(ctx context.Context, s *models.Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	s.SetUpdatedAt(now)

	query := `
		UPDATE sessions
		SET token = ?, role = ?, username = ?, expires_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, s.Token(), s.Role(), s.Username(), nullTime(s.ExpiresAt()), now, s.ID())
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return expectRow(result, s.ID())
}

// Delete soft-deletes a session by ID.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return expectRow(result, id)
}

// DeleteKind soft-deletes every live session of kind and returns how many were removed.
func (r *SessionRepository) DeleteKind(ctx context.Context, kind string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET deleted_at = ? WHERE kind = ? AND deleted_at IS NULL", time.Now(), kind)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}
	return result.RowsAffected()
}

// DeleteExpired soft-deletes live sessions whose expiry is at or before now.
//
// Expiries are stored in UTC so the driver's text timestamps compare in order.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	now = now.UTC()
	result, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET deleted_at = ? WHERE expires_at IS NOT NULL AND expires_at <= ? AND deleted_at IS NULL", now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// List retrieves live sessions in sequence order.
//
// Supported criteria: "kind" and "username" (exact match).
func (r *SessionRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Session, error) {
	query := "SELECT " + sessionColumns + " FROM sessions WHERE deleted_at IS NULL"
	args := []any{}

	if kind, ok := criteria["kind"].(string); ok && kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	if username, ok := criteria["username"].(string); ok && username != "" {
		query += " AND username = ?"
		args = append(args, username)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sessions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*models.Session, error) {
	var (
		id        string
		sequence  int
		kind      string
		token     string
		role      string
		username  string
		expiresAt sql.NullTime
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &kind, &token, &role, &username, &expiresAt, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	s := models.NewSession(sequence, kind, models.LoginResponse{Token: token, Role: role, Username: username})
	s.SetID(id)
	s.SetCreatedAt(createdAt)
	s.SetUpdatedAt(updatedAt)
	if expiresAt.Valid {
		s.SetExpiresAt(&expiresAt.Time)
	}
	if deletedAt.Valid {
		s.SetDeletedAt(&deletedAt.Time)
	}
	return s, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func expectRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: session not found or already deleted: %s", shared.ErrNotFound, id)
	}
	return nil
}
