package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Back-end names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverMemory = "memory"
)

// Open creates the back-end named by driver. sqlitePath is used by the SQLite
// back-end and dir by the file back-end.
func Open(driver, sqlitePath, dir string) (Store, error) {
	switch driver {
	case DriverSQLite:
		if d := filepath.Dir(sqlitePath); d != "." {
			if err := os.MkdirAll(d, 0755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		return NewSQLiteStore(sqlitePath)
	case DriverFile:
		return NewFileStore(dir)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
