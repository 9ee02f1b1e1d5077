package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"linkly/link-api/model"
)

const verificationTokenSize = 32

type VerificationTokenOpts struct {
	UserID    string
	Purpose   string
	ExpiresAt *time.Time
}

// MakeVerificationToken builds an unsaved single-use token row with a
// random hex secret. Persisting it is up to the caller.
func MakeVerificationToken(o *VerificationTokenOpts) (*model.VerificationToken, error) {
	if o == nil {
		return nil, errors.New("no token options provided")
	}

	if o.UserID == "" {
		return nil, errors.New("no user ID provided")
	}

	if o.Purpose == "" {
		return nil, errors.New("no token purpose provided")
	}

	if o.ExpiresAt == nil {
		return nil, errors.New("no expiry provided")
	}

	b := make([]byte, verificationTokenSize)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}

	return &model.VerificationToken{
		UserID:    o.UserID,
		Token:     hex.EncodeToString(b),
		Purpose:   o.Purpose,
		ExpiresAt: *o.ExpiresAt,
		CreatedAt: time.Now(),
		Used:      false,
	}, nil
}
