// ABOUTME: SQLite store format
// ABOUTME: Persists entries as JSON records with sample data in a blob column
package hx

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS entries (
	idx    INTEGER PRIMARY KEY,
	id     TEXT NOT NULL UNIQUE,
	class  TEXT NOT NULL,
	record TEXT NOT NULL,
	data   BLOB
);`

// OpenSQLite loads every entry of a SQLite store into memory
func OpenSQLite(path string) (*Memory, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT record, data FROM entries ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	store := NewMemory()
	for rows.Next() {
		var raw string
		var data []byte
		if err := rows.Scan(&raw, &data); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		var rec record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode entry record: %w", err)
		}
		e, err := rec.toEntry()
		if err != nil {
			return nil, err
		}
		if wf, ok := e.WaveFile(); ok && len(data) > 0 {
			wf.Data = data
		}
		if err := store.Append(e); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	return store, nil
}

// SaveSQLite writes every entry of s to a new SQLite database at path
func SaveSQLite(s Store, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replace sqlite store: %w", err)
	}
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return fmt.Errorf("create sqlite store: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO entries (idx, id, class, record, data) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range Entries(s) {
		rec := fromEntry(e)
		var data []byte
		if wf, ok := e.WaveFile(); ok {
			// Sample data goes into the blob column, not the JSON record.
			data = wf.Data
			rec.WaveFile.Data = ""
		}
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode entry %s: %w", e.ID, err)
		}
		if _, err := stmt.Exec(i, rec.ID, rec.Class, string(raw), data); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}
