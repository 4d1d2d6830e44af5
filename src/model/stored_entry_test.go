package model

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/painelfinanceiro/backend/src/database"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestStoredEntries(t *testing.T) {
	db := openTestDB(t)

	_, ok, err := GetEntry(db, KeyImportedData)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, PutEntry(db, KeyImportedData, []byte(`{"a":1}`)))
	require.NoError(t, PutEntry(db, KeyImportedData, []byte(`{"a":2}`)))
	require.NoError(t, PutEntry(db, KeyImportHistory, []byte(`[]`)))

	value, ok, err := GetEntry(db, KeyImportedData)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":2}`, string(value))

	_, ok, err = GetEntry(db, KeyImportHistory)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, DeleteEntries(db, KeyImportedData, KeyImportHistory, "unknown"))
	_, ok, err = GetEntry(db, KeyImportedData)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = GetEntry(db, KeyImportHistory)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, DeleteEntries(db))
}

func TestStoredEntries_ClosedDB(t *testing.T) {
	db := openTestDB(t)
	db.Close()

	_, _, err := GetEntry(db, KeyImportedData)
	assert.Error(t, err)
	assert.Error(t, PutEntry(db, KeyImportedData, []byte(`{}`)))
}

func TestPutEntries_Transaction(t *testing.T) {
	db := openTestDB(t)

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, PutEntries(tx,
		Entry{Key: KeyImportedData, Value: []byte(`{"a":1}`)},
		Entry{Key: KeyImportHistory, Value: []byte(`[]`)},
	))
	require.NoError(t, tx.Rollback())

	_, ok, err := GetEntry(db, KeyImportedData)
	require.NoError(t, err)
	assert.False(t, ok, "rolled back entries are not visible")

	tx, err = db.Begin()
	require.NoError(t, err)
	require.NoError(t, PutEntries(tx, Entry{Key: KeyImportedData, Value: []byte(`{"a":2}`)}))
	require.NoError(t, tx.Commit())

	value, ok, err := GetEntry(db, KeyImportedData)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":2}`, string(value))
}
