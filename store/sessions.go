package store

import (
	"errors"
	"fmt"
	"time"

	"linkly/link-api/model"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("session not found")

type Sessions struct {
	db *gorm.DB
}

func NewSessions(db *gorm.DB) *Sessions {
	return &Sessions{db: db}
}

// Create inserts a new valid session for the given user, capturing the
// requester's address and agent string as opaque metadata.
func (s *Sessions) Create(userID, ip, userAgent string) (*model.Session, error) {
	id, err := gonanoid.Generate(idCharset, 21)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID, %w", err)
	}

	session := &model.Session{
		ID:        id,
		UserID:    userID,
		Valid:     true,
		IP:        ip,
		UserAgent: userAgent,
	}

	if err := s.db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session, %w", err)
	}

	return session, nil
}

// FindValidByID is the primary accessor: revoked sessions are filtered
// out in the query itself, so callers can't accidentally treat a
// revoked session as live. Revoked-or-missing both come back as
// ErrSessionNotFound.
func (s *Sessions) FindValidByID(id string) (*model.Session, error) {
	var session model.Session

	err := s.db.Where("id = ? AND valid = ?", id, true).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}

		return nil, fmt.Errorf("failed to find session, %w", err)
	}

	return &session, nil
}

// FindAnyByID returns the row regardless of validity. Administrative
// use only, the auth path goes through FindValidByID.
func (s *Sessions) FindAnyByID(id string) (*model.Session, error) {
	var session model.Session

	err := s.db.Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}

		return nil, fmt.Errorf("failed to find session, %w", err)
	}

	return &session, nil
}

// Revoke flips the validity flag to false. Idempotent: revoking an
// already-revoked or nonexistent session is not an error.
func (s *Sessions) Revoke(id string) error {
	err := s.db.Model(model.Session{}).
		Where("id = ?", id).
		Update("valid", false).
		Error
	if err != nil {
		return fmt.Errorf("failed to revoke session, %w", err)
	}

	return nil
}

// RevokeAllForUser kills every login of one user at once.
func (s *Sessions) RevokeAllForUser(userID string) error {
	err := s.db.Model(model.Session{}).
		Where("user_id = ?", userID).
		Update("valid", false).
		Error
	if err != nil {
		return fmt.Errorf("failed to revoke user sessions, %w", err)
	}

	return nil
}

// DeleteInvalidBefore prunes revoked sessions that haven't changed
// since t. Live sessions are never touched.
func (s *Sessions) DeleteInvalidBefore(t time.Time) error {
	err := s.db.
		Where("valid = ? AND updated_at < ?", false, t).
		Delete(model.Session{}).
		Error
	if err != nil {
		return fmt.Errorf("failed to delete stale sessions, %w", err)
	}

	return nil
}
