package service

import (
	"time"

	"linkly/link-api/store"

	"go.uber.org/zap"
)

// SessionCleanup periodically prunes sessions that were revoked long
// enough ago that no refresh token bound to them can still be alive.
// Valid sessions are never deleted here.
func SessionCleanup(t, keepRevokedFor time.Duration, sessions *store.Sessions) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Session cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			if err := sessions.DeleteInvalidBefore(time.Now().Add(-keepRevokedFor)); err != nil {
				zap.L().Error("Failed to cleanup stale sessions", zap.Error(err))
			}
		}
	}()
}
