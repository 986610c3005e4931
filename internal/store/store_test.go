package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	// Verify the database file doesn't exist yet
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("database file should not exist before creating store")
	}

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}
	if s.Path() != dbPath {
		t.Errorf("Path() = %s, want %s", s.Path(), dbPath)
	}
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := newTestStore(t)

	var name string
	err := s.DB().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
		"settings",
	).Scan(&name)
	if err != nil {
		t.Errorf("settings table should exist after migrations: %v", err)
	}
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := s.Settings().Set("cursor.alpha", "0.3"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	s.Close()

	s, err = New(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	got, err := s.Settings().Get("cursor.alpha")
	if err != nil || got != "0.3" {
		t.Errorf("Get() = %q, %v, want 0.3", got, err)
	}
}

func TestStore_Close(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	// Close should not return an error
	if err := s.Close(); err != nil {
		t.Errorf("close should not return error: %v", err)
	}

	// After closing, DB operations should fail
	_, err = s.DB().Exec("SELECT 1")
	if err == nil {
		t.Error("DB operations should fail after close")
	}
}

func TestSettings_SetGet(t *testing.T) {
	repo := newTestStore(t).Settings()

	if err := repo.Set("scroll.invert", "true"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := repo.Get("scroll.invert")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "true" {
		t.Errorf("Get() = %q, want true", got)
	}

	// Upsert replaces the value.
	if err := repo.Set("scroll.invert", "false"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, _ = repo.Get("scroll.invert")
	if got != "false" {
		t.Errorf("Get() after update = %q, want false", got)
	}
}

func TestSettings_GetNotFound(t *testing.T) {
	repo := newTestStore(t).Settings()

	_, err := repo.Get("cursor.alpha")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestSettings_ListAndMap(t *testing.T) {
	repo := newTestStore(t).Settings()

	values := map[string]string{
		"scroll.sensitivity": "4",
		"cursor.alpha":       "0.3",
		"click.cooldown":     "250ms",
	}
	for k, v := range values {
		if err := repo.Set(k, v); err != nil {
			t.Fatalf("Set(%s) error = %v", k, err)
		}
	}

	list, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	wantOrder := []string{"click.cooldown", "cursor.alpha", "scroll.sensitivity"}
	if len(list) != len(wantOrder) {
		t.Fatalf("List() returned %d settings, want %d", len(list), len(wantOrder))
	}
	for i, key := range wantOrder {
		if list[i].Key != key {
			t.Errorf("List()[%d].Key = %s, want %s", i, list[i].Key, key)
		}
		if list[i].UpdatedAt.IsZero() {
			t.Errorf("List()[%d].UpdatedAt is zero", i)
		}
	}

	m, err := repo.Map()
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	for k, v := range values {
		if m[k] != v {
			t.Errorf("Map()[%s] = %q, want %q", k, m[k], v)
		}
	}
}

func TestSettings_Delete(t *testing.T) {
	repo := newTestStore(t).Settings()

	if err := repo.Set("hand.label", "Left"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Delete("hand.label"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get("hand.label"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete("hand.label"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
