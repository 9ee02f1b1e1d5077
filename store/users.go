// Package store wraps all database access behind small typed accessors
// so handlers never build queries themselves
package store

import (
	"errors"
	"fmt"

	"linkly/link-api/model"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail comes from the unique index, not from a
	// pre-check, so concurrent registrations can't slip past it.
	ErrDuplicateEmail = errors.New("email already registered")
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Create inserts a new user with a generated ID and returns it.
func (s *Users) Create(name, email, passwordHash string, verified bool) (*model.User, error) {
	id, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID, %w", err)
	}

	user := &model.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Verified:     verified,
	}

	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}

		return nil, fmt.Errorf("failed to create user, %w", err)
	}

	return user, nil
}

func (s *Users) FindByEmail(email string) (*model.User, error) {
	var user model.User

	err := s.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to find user by email, %w", err)
	}

	return &user, nil
}

func (s *Users) FindByID(id string) (*model.User, error) {
	var user model.User

	err := s.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to find user by ID, %w", err)
	}

	return &user, nil
}

// MarkVerified flips the verified flag. Flipping it again is a no-op.
func (s *Users) MarkVerified(id string) error {
	err := s.db.Model(model.User{}).
		Where("id = ?", id).
		Update("verified", true).
		Error
	if err != nil {
		return fmt.Errorf("failed to mark user verified, %w", err)
	}

	return nil
}
