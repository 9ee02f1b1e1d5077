package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

var (
	// ErrTokenExpired means the signature checked out but the token is
	// past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers bad signatures, malformed tokens and
	// tokens of the wrong kind. Callers treat it the same as
	// ErrTokenExpired but the two stay apart for logging.
	ErrTokenInvalid = errors.New("token invalid")
)

// AccessClaims is the full identity carried by a short-lived access
// token. Requests bearing a valid access token never touch storage.
type AccessClaims struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	jwt.RegisteredClaims
}

// RefreshClaims carries only the session reference. Everything else is
// re-read from storage when the token is redeemed.
type RefreshClaims struct {
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the two token kinds. The secret is
// injected at construction, nothing here reads global state or does I/O.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *TokenService) IssueAccessToken(userID, name, email, sessionID string) (string, error) {
	now := time.Now()

	claims := &AccessClaims{
		UserID:    userID,
		Name:      name,
		Email:     email,
		SessionID: sessionID,
		Kind:      kindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token, %w", err)
	}

	return signed, nil
}

func (s *TokenService) IssueRefreshToken(sessionID string) (string, error) {
	now := time.Now()

	claims := &RefreshClaims{
		SessionID: sessionID,
		Kind:      kindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token, %w", err)
	}

	return signed, nil
}

// VerifyAccess checks signature and expiry of an access token and
// returns its claims. A refresh token passed here fails with
// ErrTokenInvalid.
func (s *TokenService) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	if err := s.parse(token, claims); err != nil {
		return nil, err
	}

	if claims.Kind != kindAccess {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// VerifyRefresh is the refresh-token counterpart of VerifyAccess.
func (s *TokenService) VerifyRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}

	if err := s.parse(token, claims); err != nil {
		return nil, err
	}

	if claims.Kind != kindRefresh {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func (s *TokenService) parse(token string, claims jwt.Claims) error {
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}

		return fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if !t.Valid {
		return ErrTokenInvalid
	}

	return nil
}
