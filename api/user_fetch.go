package api

import (
	"net/http"

	"linkly/link-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserFetch returns the current identity straight from the access-token
// claims plus the user's link count. Used when loading the dashboard.
func (a *API) UserFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var linkCount int64

	err := a.DB.
		Model(model.Link{}).
		Where("user_id = ?", userID).
		Count(&linkCount).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to count links", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userID":    userID,
		"name":      c.GetString("userName"),
		"email":     c.GetString("userEmail"),
		"sessionID": c.GetString("sessionID"),
		"linkCount": linkCount,
	})
}
