package state

import (
	"errors"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"editionhouse/storage"
)

// Manager layers a journaled write overlay on top of a key-value database.
// Writes stay in memory until Commit; Snapshot and RevertToSnapshot let an
// operation roll back everything it wrote.
type Manager struct {
	db      storage.Database
	dirty   map[string]dirtyValue
	journal []journalEntry
}

type dirtyValue struct {
	value   []byte
	deleted bool
}

type journalEntry struct {
	key  string
	prev dirtyValue
	had  bool
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	if db == nil {
		db = storage.NewMemDB()
	}
	return &Manager{db: db, dirty: make(map[string]dirtyValue)}
}

func kvKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

func (m *Manager) get(key []byte) ([]byte, error) {
	hashed := kvKey(key)
	if entry, ok := m.dirty[string(hashed)]; ok {
		if entry.deleted {
			return nil, nil
		}
		return entry.value, nil
	}
	value, err := m.db.Get(hashed)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (m *Manager) write(key []byte, entry dirtyValue) {
	hashed := string(kvKey(key))
	prev, had := m.dirty[hashed]
	m.journal = append(m.journal, journalEntry{key: hashed, prev: prev, had: had})
	m.dirty[hashed] = entry
}

func (m *Manager) set(key, value []byte) {
	m.write(key, dirtyValue{value: append([]byte(nil), value...)})
}

func (m *Manager) del(key []byte) {
	m.write(key, dirtyValue{deleted: true})
}

func (m *Manager) getRLP(key []byte, out interface{}) (bool, error) {
	data, err := m.get(key)
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, fmt.Errorf("state: decode %s: %w", key, err)
	}
	return true, nil
}

func (m *Manager) putRLP(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %s: %w", key, err)
	}
	m.set(key, encoded)
	return nil
}

// Snapshot returns an identifier for the current overlay revision.
func (m *Manager) Snapshot() int { return len(m.journal) }

// RevertToSnapshot undoes every write made after the snapshot was taken.
func (m *Manager) RevertToSnapshot(id int) {
	if id < 0 {
		id = 0
	}
	for i := len(m.journal) - 1; i >= id; i-- {
		entry := m.journal[i]
		if entry.had {
			m.dirty[entry.key] = entry.prev
		} else {
			delete(m.dirty, entry.key)
		}
	}
	if id < len(m.journal) {
		m.journal = m.journal[:id]
	}
}

// Dirty reports whether uncommitted writes are pending.
func (m *Manager) Dirty() bool { return len(m.dirty) > 0 }

// Commit flushes the overlay to the database in one batch and clears the
// journal. Snapshots taken before Commit are no longer valid.
func (m *Manager) Commit() error {
	if len(m.dirty) == 0 {
		m.journal = nil
		return nil
	}
	batch := storage.NewBatch()
	for key, entry := range m.dirty {
		if entry.deleted {
			batch.Delete([]byte(key))
			continue
		}
		batch.Put([]byte(key), entry.value)
	}
	if err := m.db.Write(batch); err != nil {
		return fmt.Errorf("state: commit: %w", err)
	}
	m.dirty = make(map[string]dirtyValue)
	m.journal = nil
	return nil
}

// Discard drops every uncommitted write.
func (m *Manager) Discard() {
	m.dirty = make(map[string]dirtyValue)
	m.journal = nil
}
