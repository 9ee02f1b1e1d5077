package api

import (
	"errors"
	"net/http"

	"linkly/link-api/store"
	"linkly/link-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type editLinkBody struct {
	Destination string `form:"destination" json:"destination"`
}

func (a *API) LinkEdit(c *gin.Context) {
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

	var data editLinkBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := validators.URLValidator(data.Destination); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	err := a.Links.UpdateDestination(slug, userID, data.Destination)
	if err != nil {
		// Not-owned and nonexistent are the same answer on purpose
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

		zap.L().Error("Failed to update link", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"slug":        slug,
		"destination": data.Destination,
	})
}
