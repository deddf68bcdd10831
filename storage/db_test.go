package storage

import (
	"bytes"
	"errors"
	"testing"
)

func backends(t *testing.T) map[string]Database {
	t.Helper()
	out := map[string]Database{"memory": NewMemDB()}
	for _, name := range []string{BackendLevelDB, BackendBolt} {
		db, err := Open(name, t.TempDir())
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		out[name] = db
	}
	return out
}

func TestDatabaseRoundTrip(t *testing.T) {
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer db.Close()
			if _, err := db.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := db.Put([]byte("k"), []byte("v")); err != nil {
				t.Fatalf("put: %v", err)
			}
			got, err := db.Get([]byte("k"))
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !bytes.Equal(got, []byte("v")) {
				t.Fatalf("unexpected value %q", got)
			}
			if ok, err := db.Has([]byte("k")); err != nil || !ok {
				t.Fatalf("has: ok=%v err=%v", ok, err)
			}
			if err := db.Delete([]byte("k")); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if ok, _ := db.Has([]byte("k")); ok {
				t.Fatalf("key survived delete")
			}
		})
	}
}

func TestDatabaseBatchWrite(t *testing.T) {
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer db.Close()
			if err := db.Put([]byte("stale"), []byte("x")); err != nil {
				t.Fatalf("put: %v", err)
			}
			batch := NewBatch()
			batch.Put([]byte("a"), []byte("1"))
			batch.Put([]byte("b"), []byte("2"))
			batch.Delete([]byte("stale"))
			if batch.Len() != 3 {
				t.Fatalf("expected 3 queued ops, got %d", batch.Len())
			}
			if err := db.Write(batch); err != nil {
				t.Fatalf("write: %v", err)
			}
			for key, want := range map[string]string{"a": "1", "b": "2"} {
				got, err := db.Get([]byte(key))
				if err != nil || string(got) != want {
					t.Fatalf("%s: got %q err %v", key, got, err)
				}
			}
			if ok, _ := db.Has([]byte("stale")); ok {
				t.Fatalf("batched delete not applied")
			}
		})
	}
}

func TestDatabaseClose(t *testing.T) {
	for name, db := range backends(t) {
		if err := db.Close(); err != nil {
			t.Fatalf("close %s: %v", name, err)
		}
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("rocksdb", t.TempDir()); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
