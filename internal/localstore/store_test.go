package localstore

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SetGet(t *testing.T) {
	store := openTestStore(t)

	if err := store.Set("auth_access_token", "tok-1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get("auth_access_token")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "tok-1" {
		t.Errorf("Get = %q, want %q", got, "tok-1")
	}
}

func TestStore_SetReplaces(t *testing.T) {
	store := openTestStore(t)

	store.Set("k", "old")
	store.Set("k", "new")

	got, _ := store.Get("k")
	if got != "new" {
		t.Errorf("Get = %q, want %q", got, "new")
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Get("nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "" {
		t.Errorf("Get = %q, want empty", got)
	}
}

func TestStore_Delete(t *testing.T) {
	store := openTestStore(t)

	store.Set("k", "v")
	if err := store.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, _ := store.Get("k")
	if got != "" {
		t.Errorf("Get after delete = %q, want empty", got)
	}

	// Deleting again is fine
	if err := store.Delete("k"); err != nil {
		t.Errorf("second Delete failed: %v", err)
	}
}
