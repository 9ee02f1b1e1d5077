package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsCreateAndFindValid(t *testing.T) {
	sessions := NewSessions(newTestDB(t))

	created, err := sessions.Create("u1", "127.0.0.1", "test-agent")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Valid)

	got, err := sessions.FindValidByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "127.0.0.1", got.IP)
	assert.Equal(t, "test-agent", got.UserAgent)
}

func TestSessionsRevokeIsOneWayAndIdempotent(t *testing.T) {
	sessions := NewSessions(newTestDB(t))

	created, err := sessions.Create("u1", "", "")
	require.NoError(t, err)

	require.NoError(t, sessions.Revoke(created.ID))

	// The primary accessor must never hand back a revoked session
	_, err = sessions.FindValidByID(created.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// The row still exists for administrative reads
	any, err := sessions.FindAnyByID(created.ID)
	require.NoError(t, err)
	assert.False(t, any.Valid)

	// Revoking again, or revoking something that never existed, is fine
	require.NoError(t, sessions.Revoke(created.ID))
	require.NoError(t, sessions.Revoke("never-existed"))
}

func TestSessionsRevokeAllForUser(t *testing.T) {
	sessions := NewSessions(newTestDB(t))

	s1, err := sessions.Create("u1", "", "")
	require.NoError(t, err)
	s2, err := sessions.Create("u1", "", "")
	require.NoError(t, err)
	other, err := sessions.Create("u2", "", "")
	require.NoError(t, err)

	require.NoError(t, sessions.RevokeAllForUser("u1"))

	_, err = sessions.FindValidByID(s1.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = sessions.FindValidByID(s2.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = sessions.FindValidByID(other.ID)
	assert.NoError(t, err)
}

func TestSessionsDeleteInvalidBefore(t *testing.T) {
	sessions := NewSessions(newTestDB(t))

	revoked, err := sessions.Create("u1", "", "")
	require.NoError(t, err)
	require.NoError(t, sessions.Revoke(revoked.ID))

	live, err := sessions.Create("u1", "", "")
	require.NoError(t, err)

	require.NoError(t, sessions.DeleteInvalidBefore(time.Now().Add(time.Minute)))

	_, err = sessions.FindAnyByID(revoked.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Live sessions are never pruned
	_, err = sessions.FindValidByID(live.ID)
	assert.NoError(t, err)
}
