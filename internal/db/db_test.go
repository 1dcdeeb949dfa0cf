package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenForTesting(t *testing.T) {
	db, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	assert.NoError(t, db.Ping())
}

func TestMigrationsApply(t *testing.T) {
	db, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	var tableName string

	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='assets'").Scan(&tableName)
	assert.NoError(t, err)
	assert.Equal(t, "assets", tableName)

	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='slot_assignments'").Scan(&tableName)
	assert.NoError(t, err)
	assert.Equal(t, "slot_assignments", tableName)
}

func TestOpenIsIdempotentAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "slotimg.db")

	first, err := Open(path)
	require.NoError(t, err)
	_, err = first.Exec(`INSERT INTO slot_assignments (slot_id, asset_id, assigned_at) VALUES ('home.hero', 'a1', 1)`)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, second.Close()) })

	var assetID string
	err = second.QueryRow(`SELECT asset_id FROM slot_assignments WHERE slot_id = 'home.hero'`).Scan(&assetID)
	require.NoError(t, err)
	assert.Equal(t, "a1", assetID)
}
