package storage

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	BackendMemory  = "memory"
	BackendLevelDB = "leveldb"
	BackendBolt    = "bolt"
)

// Open returns the database for the named backend rooted at dir. The memory
// backend ignores dir.
func Open(backend, dir string) (Database, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendMemory:
		return NewMemDB(), nil
	case BackendLevelDB:
		return NewLevelDB(filepath.Join(dir, "leveldb"))
	case BackendBolt:
		return NewBoltDB(filepath.Join(dir, "state.bolt"), nil)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", backend)
	}
}
