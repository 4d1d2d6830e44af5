package model

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/username/painelfinanceiro/backend/src/logger"
)

// Keys of the entries persisted by the ledger store.
const (
	KeyImportHistory = "finance_import_history"
	KeyImportedData  = "finance_imported_data"
)

// Rows of stored_entries hold a JSON document per key; a missing row means no data
// has been stored under that key yet.

// GetEntry returns the value stored under key. The boolean is false when the key is absent.
func GetEntry(db *sql.DB, key string) ([]byte, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM stored_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

const upsertEntryQuery = `
        INSERT INTO stored_entries (key, value, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET
            value = excluded.value,
            updated_at = excluded.updated_at;
    `

// Entry is a value to be stored under Key.
type Entry struct {
	Key   string
	Value []byte
}

// PutEntry stores value under key, replacing any previous value.
func PutEntry(db *sql.DB, key string, value []byte) error {
	_, err := db.Exec(upsertEntryQuery, key, string(value), time.Now().UTC())
	if err != nil {
		logger.L.Error("Failed to store entry", "key", key, "error", err)
	}
	return err
}

// PutEntries stores every entry within tx. The caller commits or rolls back tx.
func PutEntries(tx *sql.Tx, entries ...Entry) error {
	stmt, err := tx.Prepare(upsertEntryQuery)
	if err != nil {
		return fmt.Errorf("error preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, e := range entries {
		if _, err := stmt.Exec(e.Key, string(e.Value), now); err != nil {
			logger.L.Error("Failed to store entry in transaction", "key", e.Key, "error", err)
			return fmt.Errorf("error storing %s: %w", e.Key, err)
		}
	}
	return nil
}

// DeleteEntries removes the given keys. Keys that are not present are ignored.
func DeleteEntries(db *sql.DB, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query := `DELETE FROM stored_entries WHERE key IN (?` + strings.Repeat(",?", len(keys)-1) + `)`
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	_, err := db.Exec(query, args...)
	if err != nil {
		logger.L.Error("Failed to delete entries", "keys", keys, "error", err)
	}
	return err
}
