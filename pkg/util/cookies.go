// Package util contains any functions used across the application that don't match
// any other package
package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	LoggedInCookie     = "logged_in"
)

// SetAuthCookies sets both token cookies plus the non-HttpOnly
// logged_in indicator that frontends branch on without parsing JWTs.
func SetAuthCookies(c *gin.Context, accessToken, refreshToken string, accessMaxAge, refreshMaxAge int) {
	secure := viper.GetBool("host.ssl.enabled")

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, accessToken, accessMaxAge, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, refreshToken, refreshMaxAge, "/", "", secure, true)
	c.SetCookie(LoggedInCookie, "1", refreshMaxAge, "/", "", secure, false)
}

// ClearAuthCookies removes every cookie SetAuthCookies set.
func ClearAuthCookies(c *gin.Context) {
	secure := viper.GetBool("host.ssl.enabled")

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(LoggedInCookie, "", -1, "/", "", secure, false)
}
