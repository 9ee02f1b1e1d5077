package store

import (
	"errors"
	"fmt"

	"linkly/link-api/model"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

// slugCharset drops lookalike characters so slugs survive being read
// aloud or written down.
const slugCharset = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const slugRetries = 3

var ErrLinkNotFound = errors.New("link not found")

type Links struct {
	db         *gorm.DB
	slugLength int
}

func NewLinks(db *gorm.DB, slugLength int) *Links {
	return &Links{db: db, slugLength: slugLength}
}

// Create inserts a link under a fresh random slug. Slug collisions are
// resolved by retrying; the primary key stays the real arbiter.
func (s *Links) Create(userID, destination string) (*model.Link, error) {
	for range slugRetries {
		slug, err := gonanoid.Generate(slugCharset, s.slugLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate slug, %w", err)
		}

		link := &model.Link{
			Slug:        slug,
			UserID:      userID,
			Destination: destination,
		}

		err = s.db.Create(link).Error
		if err == nil {
			return link, nil
		}

		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to create link, %w", err)
		}
	}

	return nil, errors.New("failed to find a free slug")
}

func (s *Links) FindBySlug(slug string) (*model.Link, error) {
	var link model.Link

	err := s.db.Where("slug = ?", slug).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}

		return nil, fmt.Errorf("failed to find link, %w", err)
	}

	return &link, nil
}

func (s *Links) ListByUser(userID string) ([]model.Link, error) {
	var links []model.Link

	err := s.db.
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&links).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list links, %w", err)
	}

	return links, nil
}

// UpdateDestination rewrites a link's target. Ownership is part of the
// WHERE clause so users can't edit each other's links.
func (s *Links) UpdateDestination(slug, userID, destination string) error {
	r := s.db.Model(model.Link{}).
		Where("slug = ? AND user_id = ?", slug, userID).
		Update("destination", destination)
	if r.Error != nil {
		return fmt.Errorf("failed to update link, %w", r.Error)
	}

	if r.RowsAffected == 0 {
		return ErrLinkNotFound
	}

	return nil
}

func (s *Links) Delete(slug, userID string) error {
	r := s.db.
		Where("slug = ? AND user_id = ?", slug, userID).
		Delete(model.Link{})
	if r.Error != nil {
		return fmt.Errorf("failed to delete link, %w", r.Error)
	}

	if r.RowsAffected == 0 {
		return ErrLinkNotFound
	}

	return nil
}

// Hit bumps the counter in the database so concurrent redirects don't
// lose increments.
func (s *Links) Hit(slug string) error {
	err := s.db.Model(model.Link{}).
		Where("slug = ?", slug).
		Update("hits", gorm.Expr("hits + ?", 1)).
		Error
	if err != nil {
		return fmt.Errorf("failed to increment hits, %w", err)
	}

	return nil
}
