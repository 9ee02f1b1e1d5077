package api

import (
	"errors"
	"net/http"

	"linkly/link-api/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) LinkDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	slug := c.Param("slug")
	if slug == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No slug provided",
			"requestID": requestID,
		})
		return
	}

	if err := a.Links.Delete(slug, userID); err != nil {
		if errors.Is(err, store.ErrLinkNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "Link not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete link", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.Status(http.StatusNoContent)
}
