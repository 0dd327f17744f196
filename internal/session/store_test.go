package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func testStoreRoundTrip(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Load(ctx, "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing snapshot, got %v", err)
	}

	if err := store.Save(ctx, "user-1", []byte(`{"group":"goa"}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, "user-1", []byte(`{"group":"goa","wallet":100}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	snapshot, err := store.Load(ctx, "user-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(snapshot) != `{"group":"goa","wallet":100}` {
		t.Fatalf("unexpected snapshot: %s", snapshot)
	}

	if err := store.Delete(ctx, "user-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStoreRoundTrip(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	defer store.Close()

	testStoreRoundTrip(t, store)
}
