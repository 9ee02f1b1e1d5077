package api

import (
	"errors"
	"net/http"

	"linkly/link-api/pkg/security"
	"linkly/link-api/store"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	oauthStateCookie    = "oauth_state"
	oauthVerifierCookie = "oauth_verifier"
	oauthCookieMaxAge   = 600
)

// GoogleRedirect starts the login-with-Google flow. The CSRF state and
// the PKCE verifier ride along in short-lived HttpOnly cookies until
// the callback needs them.
func (a *API) GoogleRedirect(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	state, err := security.RandState()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate OAuth state", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	authURL, verifier, err := a.Google.AuthURL(state)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to build Google auth URL", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	secure := viper.GetBool("host.ssl.enabled")
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthCookieMaxAge, "/", "", secure, true)
	c.SetCookie(oauthVerifierCookie, verifier, oauthCookieMaxAge, "/", "", secure, true)

	c.Redirect(http.StatusFound, authURL)
}

// GoogleCallback finishes the OAuth dance: check state, trade the code
// for the Google account, find or create the matching user, then run
// the same session path as a password login. Google accounts arrive
// with a verified email, so the user row is born verified and carries
// an unusable random password hash.
func (a *API) GoogleCallback(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		redirectWithError(c, loginPath(), "oauth_state_mismatch")
		return
	}

	verifier, err := c.Cookie(oauthVerifierCookie)
	if err != nil || verifier == "" {
		redirectWithError(c, loginPath(), "oauth_state_mismatch")
		return
	}

	secure := viper.GetBool("host.ssl.enabled")
	c.SetCookie(oauthStateCookie, "", -1, "/", "", secure, true)
	c.SetCookie(oauthVerifierCookie, "", -1, "/", "", secure, true)

	code := c.Query("code")
	if code == "" {
		redirectWithError(c, loginPath(), "oauth_denied")
		return
	}

	gUser, err := a.Google.Exchange(c.Request.Context(), code, verifier)
	if err != nil {
		zap.L().Error("Failed to exchange OAuth code", zap.Error(err), zap.String("requestID", requestID))

		redirectWithError(c, loginPath(), "oauth_failed")
		return
	}

	if !gUser.EmailVerified {
		redirectWithError(c, loginPath(), "oauth_email_unverified")
		return
	}

	user, err := a.Users.FindByEmail(gUser.Email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		hash, err := a.unusablePasswordHash()
		if err == nil {
			user, err = a.Users.Create(gUser.Name, gUser.Email, hash, true)
		}
		if err != nil && !errors.Is(err, store.ErrDuplicateEmail) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to create user from Google account", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		if user == nil {
			// Lost a race with a concurrent registration for the same email
			user, err = a.Users.FindByEmail(gUser.Email)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":     "Internal server error",
					"requestID": requestID,
				})

				zap.L().Error("Failed to look up user after create race", zap.Error(err), zap.String("requestID", requestID))
				return
			}
		}
	}

	a.startSession(c, user, landingPath())
}

// unusablePasswordHash hashes a long random secret that's thrown away,
// so OAuth-born accounts can't be entered through the password form.
func (a *API) unusablePasswordHash() (string, error) {
	secret, err := security.RandState()
	if err != nil {
		return "", err
	}

	return a.Argon.Hash(secret + secret)
}
