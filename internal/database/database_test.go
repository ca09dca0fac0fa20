package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB_CreatesTables(t *testing.T) {
	db, dialect, teardown, err := InitDB(Options{DBName: ":memory:"})
	require.NoError(t, err, "InitDB should not return an error")
	defer teardown()

	assert.Equal(t, DialectSQLite, dialect)

	for _, table := range []string{
		"roster_members",
		"matches",
		"training_sessions",
		"training_attendance_records",
		"player_role_assignments",
		"news_links",
	} {
		t.Run(table, func(t *testing.T) {
			var name string
			err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
			require.NoError(t, err, "Querying for %s should not produce an error", table)
			assert.Equal(t, table, name)
		})
	}
}

func TestInitDB_IsIdempotentOnFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "club.db")

	_, _, teardown, err := InitDB(Options{DBName: path})
	require.NoError(t, err)
	teardown()

	db, _, teardown, err := InitDB(Options{DBName: path})
	require.NoError(t, err, "running migrations twice should be a no-op")
	defer teardown()

	var version int64
	require.NoError(t, db.QueryRow("SELECT MAX(version_id) FROM goose_db_version").Scan(&version))
	assert.Equal(t, int64(1), version)
}

func TestLocalDSN(t *testing.T) {
	assert.Equal(t, ":memory:", localDSN(":memory:"))
	assert.Equal(t, "file:club.db?_foreign_keys=on", localDSN("club.db"))
	assert.Equal(t, "file:x.db?cache=shared", localDSN("file:x.db?cache=shared"))
}
