package service

import (
	"time"

	"linkly/link-api/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenCleanup periodically deletes verification tokens that expired
// and can't be redeemed anymore
func TokenCleanup(t time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Token cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			err := db.
				Where("expires_at < ?", time.Now()).
				Delete(model.VerificationToken{}).
				Error
			if err != nil {
				zap.L().Error("Failed to cleanup expired tokens", zap.Error(err))
			}
		}
	}()
}
