package hx

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Open loads a store, choosing the format from the file extension
func Open(path string) (Store, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return LoadManifest(path)
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unsupported store format %q", ext)
	}
}

// Save writes a store, choosing the format from the file extension
func Save(s Store, path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return SaveManifest(s, path)
	case ".db", ".sqlite", ".sqlite3":
		return SaveSQLite(s, path)
	default:
		return fmt.Errorf("unsupported store format %q", ext)
	}
}
