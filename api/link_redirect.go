package api

import (
	"errors"
	"net/http"

	"linkly/link-api/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LinkRedirect is the public hot path: resolve the slug and bounce the
// visitor to the destination. No auth, no cookies.
func (a *API) LinkRedirect(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	slug := c.Param("slug")

	link, err := a.Links.FindBySlug(slug)
	if err != nil {
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

		zap.L().Error("Failed to resolve link", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Best effort, a lost increment shouldn't block the redirect
	if err := a.Links.Hit(slug); err != nil {
		zap.L().Error("Failed to count hit", zap.Error(err), zap.String("requestID", requestID))
	}

	c.Redirect(http.StatusFound, link.Destination)
}
