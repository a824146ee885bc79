package models

import (
	"fmt"
	"strings"
	"time"
)

// Session represents a logged-in operator, persisted between CLI invocations.
//
// At most one non-deleted session is expected at a time; logging in again
// replaces the previous one.
type Session struct {
	id        string
	sequence  int
	email     string
	name      string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewSession creates a Session for the given operator identity.
func NewSession(sequence int, email, name string) *Session {
	now := time.Now()
	return &Session{
		sequence:  sequence,
		email:     email,
		name:      name,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Session) ID() string            { return s.id }
func (s *Session) Sequence() int         { return s.sequence }
func (s *Session) Email() string         { return s.email }
func (s *Session) Name() string          { return s.name }
func (s *Session) CreatedAt() time.Time  { return s.createdAt }
func (s *Session) UpdatedAt() time.Time  { return s.updatedAt }
func (s *Session) DeletedAt() *time.Time { return s.deletedAt }

func (s *Session) SetID(id string)           { s.id = id }
func (s *Session) SetName(name string)       { s.name = name }
func (s *Session) SetUpdatedAt(t time.Time)  { s.updatedAt = t }
func (s *Session) SetDeletedAt(t *time.Time) { s.deletedAt = t }
func (s *Session) SetCreatedAt(t time.Time)  { s.createdAt = t }

// Validate checks that the session carries a plausible operator email.
func (s *Session) Validate() error {
	if s.email == "" {
		return fmt.Errorf("session email is required")
	}
	if !strings.Contains(s.email, "@") {
		return fmt.Errorf("session email %q is not an email address", s.email)
	}
	return nil
}
