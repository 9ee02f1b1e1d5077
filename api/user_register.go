package api

import (
	"errors"
	"net/http"
	"time"

	"linkly/link-api/pkg/security"
	"linkly/link-api/store"
	"linkly/link-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerBody struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// UserRegister creates a new account and immediately logs it in: the
// same session-creation and cookie-setting sequence as UserLogin runs
// right after the user row is written.
func (a *API) UserRegister(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data registerBody
	if err := c.ShouldBind(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))

		redirectWithError(c, registerPath(), "invalid_body")
		return
	}

	if err := validators.NameValidator(data.Name); err != nil {
		redirectWithError(c, registerPath(), "invalid_name")
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		redirectWithError(c, registerPath(), "invalid_email")
		return
	}

	if err := validators.PasswordValidator(data.Password); err != nil {
		redirectWithError(c, registerPath(), "invalid_password")
		return
	}

	if _, err := a.Users.FindByEmail(data.Email); err == nil {
		redirectWithError(c, registerPath(), "user_exists")
		return
	} else if !errors.Is(err, store.ErrUserNotFound) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check if user is registered", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	hash, err := a.Argon.Hash(data.Password)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	user, err := a.Users.Create(data.Name, data.Email, hash, false)
	if err != nil {
		// The unique index is the real gate, the pre-check above only
		// exists for the common case. A race between the two lands here.
		if errors.Is(err, store.ErrDuplicateEmail) {
			redirectWithError(c, registerPath(), "user_exists")
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	expireAt := time.Now().Add(time.Minute * 30)

	verifToken, err := security.MakeVerificationToken(&security.VerificationTokenOpts{
		UserID:    user.ID,
		Purpose:   "email_verify",
		ExpiresAt: &expireAt,
	})
	if err == nil {
		err = a.DB.Create(verifToken).Error
	}
	if err == nil {
		err = a.Mailer.SendVerificationMail(verifToken, data.Email)
	}
	if err != nil {
		// The account exists either way; verification can be re-sent
		zap.L().Error("Failed to send verification mail", zap.Error(err), zap.String("requestID", requestID))
	}

	a.startSession(c, user, landingPath())
}
