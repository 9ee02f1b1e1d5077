package api

import (
	"errors"
	"net/http"

	"linkly/link-api/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginBody struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

func (a *API) UserLogin(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))

		redirectWithError(c, loginPath(), "invalid_body")
		return
	}

	if data.Email == "" || data.Password == "" {
		redirectWithError(c, loginPath(), "missing_fields")
		return
	}

	user, err := a.Users.FindByEmail(data.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Same answer as a wrong password so the endpoint can't be
			// used to probe which emails have accounts
			redirectWithError(c, loginPath(), "invalid_credentials")
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	ok, err := a.Argon.Verify(data.Password, user.PasswordHash)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		redirectWithError(c, loginPath(), "invalid_credentials")
		return
	}

	a.startSession(c, user, landingPath())
}
