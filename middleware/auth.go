package middleware

import (
	"errors"
	"net/http"

	"linkly/link-api/pkg/security"
	"linkly/link-api/pkg/util"
	"linkly/link-api/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthDeps are the collaborators the auth middleware needs. The token
// service carries the signing secret, the stores back the refresh path.
type AuthDeps struct {
	Tokens   *security.TokenService
	Sessions *store.Sessions
	Users    *store.Users
}

// NewAuthMiddleware classifies every request's credential cookies and
// leaves a best-effort identity in the gin context. It never rejects a
// request itself; handlers that need a login put RequireAuth behind it.
//
// States, in order:
//  1. no cookies            -> anonymous
//  2. access token verifies -> identity from claims, zero storage reads
//  3. refresh token present -> look up the session and user, mint a
//     fresh token pair, set both cookies, identity from the new claims
//  4. everything failed     -> anonymous, both cookies cleared
func NewAuthMiddleware(d *AuthDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		accessStr, accessErr := c.Cookie(util.AccessTokenCookie)
		refreshStr, refreshErr := c.Cookie(util.RefreshTokenCookie)

		if accessErr != nil && refreshErr != nil {
			c.Next()
			return
		}

		if accessErr == nil {
			claims, err := d.Tokens.VerifyAccess(accessStr)
			if err == nil {
				setIdentity(c, claims)
				c.Next()
				return
			}

			zap.L().Debug("Access token rejected", zap.Error(err), zap.String("requestID", requestID))
		}

		if refreshErr != nil {
			// Dead access token and nothing to refresh with
			util.ClearAuthCookies(c)
			c.Next()
			return
		}

		claims, ok := refresh(c, d, refreshStr, requestID)
		if !ok {
			// refresh wrote the response (cleared cookies or aborted)
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// refresh runs the token-refresh sub-flow. On any credential problem it
// clears both cookies and lets the request continue anonymously; only a
// storage fault aborts the request.
func refresh(c *gin.Context, d *AuthDeps, refreshStr, requestID string) (*security.AccessClaims, bool) {
	refreshClaims, err := d.Tokens.VerifyRefresh(refreshStr)
	if err != nil {
		zap.L().Debug("Refresh token rejected", zap.Error(err), zap.String("requestID", requestID))

		util.ClearAuthCookies(c)
		c.Next()
		return nil, false
	}

	session, err := d.Sessions.FindValidByID(refreshClaims.SessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			util.ClearAuthCookies(c)
			c.Next()
			return nil, false
		}

		abortStorageFault(c, requestID, err)
		return nil, false
	}

	user, err := d.Users.FindByID(session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			util.ClearAuthCookies(c)
			c.Next()
			return nil, false
		}

		abortStorageFault(c, requestID, err)
		return nil, false
	}

	// The session row itself is untouched: same ID, no rotation. Both
	// new tokens get full lifetimes counted from now.
	accessToken, err := d.Tokens.IssueAccessToken(user.ID, user.Name, user.Email, session.ID)
	if err != nil {
		abortStorageFault(c, requestID, err)
		return nil, false
	}

	refreshToken, err := d.Tokens.IssueRefreshToken(session.ID)
	if err != nil {
		abortStorageFault(c, requestID, err)
		return nil, false
	}

	util.SetAuthCookies(c, accessToken, refreshToken,
		int(d.Tokens.AccessTTL().Seconds()), int(d.Tokens.RefreshTTL().Seconds()))

	zap.L().Debug("Token pair refreshed",
		zap.String("sessionID", session.ID),
		zap.String("requestID", requestID))

	return &security.AccessClaims{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		SessionID: session.ID,
	}, true
}

func abortStorageFault(c *gin.Context, requestID string, err error) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":     "Internal server error",
		"requestID": requestID,
	})

	zap.L().Error("Auth refresh failed", zap.Error(err), zap.String("requestID", requestID))
}

func setIdentity(c *gin.Context, claims *security.AccessClaims) {
	c.Set("userID", claims.UserID)
	c.Set("userName", claims.Name)
	c.Set("userEmail", claims.Email)
	c.Set("sessionID", claims.SessionID)
}

// RequireAuth rejects requests that came through the auth middleware
// without an identity.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("userID") == "" {
			requestID := c.MustGet("requestID").(string)

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Not authenticated",
				"requestID": requestID,
			})
			return
		}

		c.Next()
	}
}
