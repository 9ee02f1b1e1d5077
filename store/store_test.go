package store

import (
	"path/filepath"
	"testing"

	"linkly/link-api/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(
		sqlite.Open(filepath.Join(t.TempDir(), "test.db")),
		&gorm.Config{TranslateError: true},
	)
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		model.User{}, model.Session{}, model.Link{}, model.VerificationToken{},
	))

	return db
}
