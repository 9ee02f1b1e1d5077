package api

import (
	"net/http"

	"linkly/link-api/model"
	"linkly/link-api/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// startSession is the common tail of every successful login path
// (password login, registration, OAuth): create the Session row, mint
// the token pair bound to it, set the cookies and redirect. Cookies are
// only written once everything else has succeeded.
func (a *API) startSession(c *gin.Context, user *model.User, redirectTo string) {
	requestID := c.MustGet("requestID").(string)

	session, err := a.Sessions.Create(user.ID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create session", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	accessToken, err := a.Tokens.IssueAccessToken(user.ID, user.Name, user.Email, session.ID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue access token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	refreshToken, err := a.Tokens.IssueRefreshToken(session.ID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue refresh token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	util.SetAuthCookies(c, accessToken, refreshToken,
		int(a.Tokens.AccessTTL().Seconds()), int(a.Tokens.RefreshTTL().Seconds()))

	c.Redirect(http.StatusFound, redirectTo)
}
