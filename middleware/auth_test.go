package middleware

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"linkly/link-api/model"
	"linkly/link-api/pkg/security"
	"linkly/link-api/pkg/util"
	"linkly/link-api/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	router   *gin.Engine
	tokens   *security.TokenService
	expired  *security.TokenService
	users    *store.Users
	sessions *store.Sessions
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(
		sqlite.Open(filepath.Join(t.TempDir(), "test.db")),
		&gorm.Config{TranslateError: true},
	)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.User{}, model.Session{}))

	env := &authTestEnv{
		tokens: security.NewTokenService("test-secret", 15*time.Minute, 7*24*time.Hour),
		// same secret, already-expired access tokens
		expired:  security.NewTokenService("test-secret", -time.Minute, 7*24*time.Hour),
		users:    store.NewUsers(db),
		sessions: store.NewSessions(db),
	}

	r := gin.New()
	r.Use(NewRequestIDMiddleware())
	r.Use(NewAuthMiddleware(&AuthDeps{
		Tokens:   env.tokens,
		Sessions: env.sessions,
		Users:    env.users,
	}))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID":    c.GetString("userID"),
			"sessionID": c.GetString("sessionID"),
		})
	})
	r.GET("/private", RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	env.router = r

	return env
}

func (e *authTestEnv) login(t *testing.T) (userID, sessionID string) {
	t.Helper()

	user, err := e.users.Create("Ada", "ada@example.com", "hash", true)
	require.NoError(t, err)

	session, err := e.sessions.Create(user.ID, "127.0.0.1", "test-agent")
	require.NoError(t, err)

	return user.ID, session.ID
}

func (e *authTestEnv) request(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func cookieByName(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthNoCookiesIsAnonymous(t *testing.T) {
	env := newAuthTestEnv(t)

	w := env.request(t, "/whoami")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":""`)
	assert.Empty(t, w.Result().Cookies())
}

func TestAuthValidAccessTokenHotPath(t *testing.T) {
	env := newAuthTestEnv(t)
	userID, sessionID := env.login(t)

	access, err := env.tokens.IssueAccessToken(userID, "Ada", "ada@example.com", sessionID)
	require.NoError(t, err)

	w := env.request(t, "/whoami", &http.Cookie{Name: util.AccessTokenCookie, Value: access})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID)
	assert.Contains(t, w.Body.String(), sessionID)
	// Hot path writes nothing back
	assert.Empty(t, w.Result().Cookies())
}

func TestAuthRefreshOnExpiredAccess(t *testing.T) {
	env := newAuthTestEnv(t)
	userID, sessionID := env.login(t)

	staleAccess, err := env.expired.IssueAccessToken(userID, "Ada", "ada@example.com", sessionID)
	require.NoError(t, err)
	refresh, err := env.tokens.IssueRefreshToken(sessionID)
	require.NoError(t, err)

	w := env.request(t, "/whoami",
		&http.Cookie{Name: util.AccessTokenCookie, Value: staleAccess},
		&http.Cookie{Name: util.RefreshTokenCookie, Value: refresh},
	)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID)

	// Both cookies rotated to fresh, verifiable tokens
	newAccess := cookieByName(t, w, util.AccessTokenCookie)
	require.NotNil(t, newAccess)
	claims, err := env.tokens.VerifyAccess(newAccess.Value)
	require.NoError(t, err)
	assert.Equal(t, sessionID, claims.SessionID)

	newRefresh := cookieByName(t, w, util.RefreshTokenCookie)
	require.NotNil(t, newRefresh)
	_, err = env.tokens.VerifyRefresh(newRefresh.Value)
	assert.NoError(t, err)
}

func TestAuthRefreshWithMissingAccessCookie(t *testing.T) {
	env := newAuthTestEnv(t)
	userID, sessionID := env.login(t)

	refresh, err := env.tokens.IssueRefreshToken(sessionID)
	require.NoError(t, err)

	w := env.request(t, "/whoami", &http.Cookie{Name: util.RefreshTokenCookie, Value: refresh})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID)
	require.NotNil(t, cookieByName(t, w, util.AccessTokenCookie))
}

func TestAuthRevokedSessionCannotRefresh(t *testing.T) {
	env := newAuthTestEnv(t)
	_, sessionID := env.login(t)

	refresh, err := env.tokens.IssueRefreshToken(sessionID)
	require.NoError(t, err)
	require.NoError(t, env.sessions.Revoke(sessionID))

	w := env.request(t, "/whoami", &http.Cookie{Name: util.RefreshTokenCookie, Value: refresh})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":""`)

	// Both cookies cleared
	cleared := cookieByName(t, w, util.RefreshTokenCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.LessOrEqual(t, cleared.MaxAge, 0)
}

func TestAuthAccessTokenOutlivesRevocation(t *testing.T) {
	env := newAuthTestEnv(t)
	userID, sessionID := env.login(t)

	access, err := env.tokens.IssueAccessToken(userID, "Ada", "ada@example.com", sessionID)
	require.NoError(t, err)
	require.NoError(t, env.sessions.Revoke(sessionID))

	// The unexpired access token still authenticates: revocation
	// latency is bounded by the access TTL, not zero
	w := env.request(t, "/whoami", &http.Cookie{Name: util.AccessTokenCookie, Value: access})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID)
}

func TestAuthGarbageTokensClearCookies(t *testing.T) {
	env := newAuthTestEnv(t)

	w := env.request(t, "/whoami",
		&http.Cookie{Name: util.AccessTokenCookie, Value: "garbage"},
		&http.Cookie{Name: util.RefreshTokenCookie, Value: "garbage"},
	)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":""`)

	cleared := cookieByName(t, w, util.AccessTokenCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestAuthConcurrentRefreshBothSucceed(t *testing.T) {
	env := newAuthTestEnv(t)
	_, sessionID := env.login(t)

	refresh, err := env.tokens.IssueRefreshToken(sessionID)
	require.NoError(t, err)

	// The same refresh token redeemed twice: both requests succeed and
	// both minted pairs stay bound to the same session
	w1 := env.request(t, "/whoami", &http.Cookie{Name: util.RefreshTokenCookie, Value: refresh})
	w2 := env.request(t, "/whoami", &http.Cookie{Name: util.RefreshTokenCookie, Value: refresh})

	for _, w := range []*httptest.ResponseRecorder{w1, w2} {
		assert.Equal(t, http.StatusOK, w.Code)

		minted := cookieByName(t, w, util.AccessTokenCookie)
		require.NotNil(t, minted)
		claims, err := env.tokens.VerifyAccess(minted.Value)
		require.NoError(t, err)
		assert.Equal(t, sessionID, claims.SessionID)
	}
}

func TestRequireAuth(t *testing.T) {
	env := newAuthTestEnv(t)
	userID, sessionID := env.login(t)

	w := env.request(t, "/private")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	access, err := env.tokens.IssueAccessToken(userID, "Ada", "ada@example.com", sessionID)
	require.NoError(t, err)

	w = env.request(t, "/private", &http.Cookie{Name: util.AccessTokenCookie, Value: access})
	assert.Equal(t, http.StatusOK, w.Code)
}
