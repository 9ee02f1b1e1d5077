package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"linkly/link-api/model"
	"linkly/link-api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	gin.SetMode(gin.TestMode)

	viper.Set("db.driver", "sqlite")
	viper.Set("db.dsn", filepath.Join(t.TempDir(), "test.db"))
	viper.Set("jwt.secret", "test-secret")
	viper.Set("jwt.access_ttl_minutes", 15)
	viper.Set("jwt.refresh_ttl_days", 7)
	viper.Set("links.slug_length", 7)
	viper.Set("mail.enabled", false)
	viper.Set("oauth.google.enabled", false)
	viper.Set("host.ssl.enabled", false)
	viper.Set("app.landing_path", "/dashboard")
	viper.Set("app.login_path", "/login")
	viper.Set("app.register_path", "/register")

	a, err := NewRouter()
	require.NoError(t, err)
	return a
}

func postForm(t *testing.T, a *API, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func getPath(t *testing.T, a *API, method, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func registerAda(t *testing.T, a *API) *httptest.ResponseRecorder {
	t.Helper()

	return postForm(t, a, "/api/users", url.Values{
		"name":     {"Ada"},
		"email":    {"ada@example.com"},
		"password": {"correct-horse"},
	})
}

func TestRegisterLogsInAndCreatesSession(t *testing.T) {
	a := newTestAPI(t)

	w := registerAda(t, a)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	access := responseCookie(w, util.AccessTokenCookie)
	require.NotNil(t, access)
	refresh := responseCookie(w, util.RefreshTokenCookie)
	require.NotNil(t, refresh)

	claims, err := a.Tokens.VerifyAccess(access.Value)
	require.NoError(t, err)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@example.com", claims.Email)

	// A session row owned by the new user exists and is valid
	session, err := a.Sessions.FindValidByID(claims.SessionID)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, session.UserID)

	// A verification token row was written for the new account
	var tokenCount int64
	require.NoError(t, a.DB.Model(model.VerificationToken{}).
		Where("user_id = ?", claims.UserID).
		Count(&tokenCount).Error)
	assert.EqualValues(t, 1, tokenCount)
}

func TestRegisterValidation(t *testing.T) {
	a := newTestAPI(t)

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing name", url.Values{"email": {"a@b.co"}, "password": {"longenough"}}, "invalid_name"},
		{"bad email", url.Values{"name": {"Ada"}, "email": {"nope"}, "password": {"longenough"}}, "invalid_email"},
		{"short password", url.Values{"name": {"Ada"}, "email": {"a@b.co"}, "password": {"short"}}, "invalid_password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postForm(t, a, "/api/users", tt.form)
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/register?error="+tt.want, w.Header().Get("Location"))
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	a := newTestAPI(t)

	registerAda(t, a)
	w := registerAda(t, a)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/register?error=user_exists", w.Header().Get("Location"))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := newTestAPI(t)
	registerAda(t, a)

	// Wrong password and unknown email collapse into the same answer
	for _, form := range []url.Values{
		{"email": {"ada@example.com"}, "password": {"wrong-horse"}},
		{"email": {"nobody@example.com"}, "password": {"correct-horse"}},
	} {
		w := postForm(t, a, "/api/users/login", form)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login?error=invalid_credentials", w.Header().Get("Location"))
		assert.Nil(t, responseCookie(w, util.AccessTokenCookie))
	}
}

func TestLoginThenAuthenticatedFetch(t *testing.T) {
	a := newTestAPI(t)
	registerAda(t, a)

	w := postForm(t, a, "/api/users/login", url.Values{
		"email":    {"ada@example.com"},
		"password": {"correct-horse"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	access := responseCookie(w, util.AccessTokenCookie)
	require.NotNil(t, access)

	// The access token alone authenticates, no refresh cookie needed
	fetch := getPath(t, a, http.MethodGet, "/api/users", access)
	assert.Equal(t, http.StatusOK, fetch.Code)
	assert.Contains(t, fetch.Body.String(), "ada@example.com")
}

func TestLogoutRevokesSessionButNotAccessToken(t *testing.T) {
	a := newTestAPI(t)

	w := registerAda(t, a)
	access := responseCookie(w, util.AccessTokenCookie)
	refresh := responseCookie(w, util.RefreshTokenCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)

	claims, err := a.Tokens.VerifyAccess(access.Value)
	require.NoError(t, err)

	out := postForm(t, a, "/api/users/logout", url.Values{}, access, refresh)
	assert.Equal(t, http.StatusFound, out.Code)
	assert.Equal(t, "/login", out.Header().Get("Location"))

	cleared := responseCookie(out, util.AccessTokenCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	// The session is revoked
	session, err := a.Sessions.FindAnyByID(claims.SessionID)
	require.NoError(t, err)
	assert.False(t, session.Valid)

	// The orphaned refresh token fails immediately...
	v := getPath(t, a, http.MethodHead, "/api/validate", refresh)
	assert.Equal(t, http.StatusUnauthorized, v.Code)

	// ...but the orphaned access token authenticates until its own expiry
	v = getPath(t, a, http.MethodHead, "/api/validate", access)
	assert.Equal(t, http.StatusOK, v.Code)
}

func TestEmailVerification(t *testing.T) {
	a := newTestAPI(t)

	w := registerAda(t, a)
	claims, err := a.Tokens.VerifyAccess(responseCookie(w, util.AccessTokenCookie).Value)
	require.NoError(t, err)

	var token model.VerificationToken
	require.NoError(t, a.DB.Where("user_id = ?", claims.UserID).First(&token).Error)

	v := getPath(t, a, http.MethodGet, "/verify?user_id="+claims.UserID+"&token="+token.Token)
	assert.Equal(t, http.StatusFound, v.Code)
	assert.Equal(t, "/login?verified=1", v.Header().Get("Location"))

	user, err := a.Users.FindByID(claims.UserID)
	require.NoError(t, err)
	assert.True(t, user.Verified)

	// The token is single-use
	v = getPath(t, a, http.MethodGet, "/verify?user_id="+claims.UserID+"&token="+token.Token)
	assert.Equal(t, http.StatusBadRequest, v.Code)
}
