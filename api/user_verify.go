package api

import (
	"errors"
	"net/http"
	"time"

	"linkly/link-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type partialVerifToken struct {
	ExpiresAt time.Time
	Used      bool
}

// UserVerify redeems an email verification token. The token is
// single-use; the used flag and the user's verified flag flip in one
// transaction.
func (a *API) UserVerify(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No verification token provided",
			"requestID": requestID,
		})
		return
	}

	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No user ID provided",
			"requestID": requestID,
		})
		return
	}

	var verifRecord partialVerifToken

	err := a.DB.
		Model(model.VerificationToken{}).
		Where("user_id = ? AND token = ?", userID, token).
		Select("expires_at", "used").
		First(&verifRecord).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Token expired or invalid",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to get verification token record", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if verifRecord.Used {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Token was used already",
			"requestID": requestID,
		})
		return
	}

	if verifRecord.ExpiresAt.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Token expired",
			"requestID": requestID,
		})
		return
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.VerificationToken{}).
			Where("user_id = ? AND token = ?", userID, token).
			Updates(map[string]any{
				"used":    true,
				"used_at": time.Now(),
			}).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.User{}).
			Where("id = ?", userID).
			Update("verified", true).
			Error; err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to verify user",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update user and token in transaction", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.Redirect(http.StatusFound, loginPath()+"?verified=1")
}
