package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/teimsafety/ppectl/internal/models"
	"github.com/teimsafety/ppectl/internal/shared"
)

// SessionRepository implements [models.Repository] for [models.Session] persistence.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session into the database with generated ID and sequence
func (r *SessionRepository) Create(session *models.Session) error {
	sequence, err := NextSequence(r.db, "sessions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	session.SetID(id)

	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO sessions (id, sequence, email, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, session.Email(), session.Name(), session.CreatedAt(), session.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID, excluding soft-deleted sessions
func (r *SessionRepository) Get(id string) (*models.Session, error) {
	query := `
		SELECT id, sequence, email, name, created_at, updated_at, deleted_at
		FROM sessions
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Current retrieves the most recently created live session, or
// [shared.ErrSessionNotFound] when nobody is logged in.
func (r *SessionRepository) Current() (*models.Session, error) {
	query := `
		SELECT id, sequence, email, name, created_at, updated_at, deleted_at
		FROM sessions
		WHERE deleted_at IS NULL
		ORDER BY sequence DESC
		LIMIT 1
	`

	session, err := r.scanOne(r.db.QueryRow(query))
	if err != nil {
		return nil, shared.ErrSessionNotFound
	}
	return session, nil
}

// Update modifies an existing session in the database
func (r *SessionRepository) Update(session *models.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	session.SetUpdatedAt(now)

	query := `
		UPDATE sessions
		SET email = ?, name = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, session.Email(), session.Name(), now, session.ID())
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session not found or already deleted: %s", session.ID())
	}

	return nil
}

// Delete soft-deletes a session by ID
func (r *SessionRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE sessions
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session not found or already deleted: %s", id)
	}

	return nil
}

// DeleteAll soft-deletes every live session. Used by logout.
func (r *SessionRepository) DeleteAll() error {
	query := `
		UPDATE sessions
		SET deleted_at = ?
		WHERE deleted_at IS NULL
	`

	if _, err := r.db.Exec(query, time.Now()); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

// List retrieves all sessions matching the given criteria, excluding soft-deleted sessions
func (r *SessionRepository) List(criteria map[string]any) ([]*models.Session, error) {
	query := `
		SELECT id, sequence, email, name, created_at, updated_at, deleted_at
		FROM sessions
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if email, ok := criteria["email"].(string); ok && email != "" {
		query += " AND email = ?"
		args = append(args, email)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SessionRepository) scanOne(row *sql.Row) (*models.Session, error) {
	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) scanRow(rows *sql.Rows) (*models.Session, error) {
	session, err := scanSession(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	return session, nil
}

func scanSession(s rowScanner) (*models.Session, error) {
	var (
		id        string
		sequence  int
		email     string
		name      string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := s.Scan(&id, &sequence, &email, &name, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	session := models.NewSession(sequence, email, name)
	session.SetID(id)
	session.SetCreatedAt(createdAt)
	session.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		session.SetDeletedAt(&deletedAt.Time)
	}

	return session, nil
}
