package api

import (
	"net/http"

	"linkly/link-api/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserLogout revokes the session behind the current identity and clears
// the token cookies. The orphaned access token stays verifiable until
// its own expiry; the refresh token dies with the session immediately.
func (a *API) UserLogout(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	sessionID := c.GetString("sessionID")
	if sessionID == "" {
		// Nothing to revoke, just send them to the login page
		c.Redirect(http.StatusFound, loginPath())
		return
	}

	if err := a.Sessions.Revoke(sessionID); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to revoke session", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	util.ClearAuthCookies(c)
	c.Redirect(http.StatusFound, loginPath())
}
