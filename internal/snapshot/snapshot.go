// Package snapshot provides offline copies of the board database.
//
// A snapshot is a JSON document with the same {"data": [...]} envelope the
// online database returns. One snapshot is embedded at compile time so the
// library and CLI can answer lookups without network access; others can be
// read from disk.
//
// Users of the mbedtargets library should not need to interact with this
// package directly.
package snapshot

import (
	"embed"
	"fmt"
	"os"

	"github.com/armmbed/mbedtargets/internal/database"
)

// embeddedPath is the location of the snapshot inside [files].
const embeddedPath = "data/board_database_snapshot.json"

//go:embed data/board_database_snapshot.json
var files embed.FS

// Embedded returns the records of the snapshot compiled into the binary.
//
// The document is decoded on every call, so callers never share maps.
func Embedded() ([]map[string]any, error) {
	body, err := files.ReadFile(embeddedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded snapshot: %w", err)
	}
	return database.Decode(body)
}

// ReadFile returns the records of the snapshot stored at path.
func ReadFile(path string) ([]map[string]any, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	records, err := database.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return records, nil
}
