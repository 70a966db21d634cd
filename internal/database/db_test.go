package database

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/seat-hold-engine/internal/database/migrations"
)

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"app@tcp(db:3306)/seats?charset=utf8mb4&parseTime=true&loc=UTC",
		DSN("app", "", "db", "3306", "seats"))
	assert.Equal(t,
		"app:secret@tcp(db:3306)/seats?charset=utf8mb4&parseTime=true&loc=UTC",
		DSN("app", "secret", "db", "3306", "seats"))
}

func TestMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrations.FS, "*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrations.FS, "*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}
