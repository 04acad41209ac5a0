package history

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/voxtake/voxtake/internal/store"
)

func newTestStore(t *testing.T, path string) *Store {
	t.Helper()
	kv, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	s, err := New(kv, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return s
}

// checkPersisted reloads the store from disk and compares it to the
// in-memory list, the round-trip law every mutation must uphold.
func checkPersisted(t *testing.T, path string, s *Store) {
	t.Helper()
	reloaded := newTestStore(t, path)

	got := reloaded.List()
	want := s.List()
	if len(got) != len(want) {
		t.Fatalf("Persisted %d items, in-memory has %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Item %d: persisted '%s', in-memory '%s'", i, got[i], want[i])
		}
	}
}

func TestAppend_OrderAndPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s := newTestStore(t, path)

	for _, text := range []string{"first", "second", "third"} {
		if err := s.Append(text); err != nil {
			t.Fatalf("Append(%q) failed: %v", text, err)
		}
		checkPersisted(t, path, s)
	}

	items := s.List()
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	// Oldest-first internally; the newest entry is stored last.
	if items[0] != "first" || items[2] != "third" {
		t.Errorf("Unexpected order: %v", items)
	}
}

func TestDeleteAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s := newTestStore(t, path)

	for _, text := range []string{"a", "b", "c"} {
		if err := s.Append(text); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	if err := s.DeleteAt(1); err != nil {
		t.Fatalf("DeleteAt(1) failed: %v", err)
	}
	checkPersisted(t, path, s)

	items := s.List()
	if len(items) != 2 || items[0] != "a" || items[1] != "c" {
		t.Errorf("Unexpected items after delete: %v", items)
	}
}

func TestDeleteAt_OutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s := newTestStore(t, path)

	if err := s.Append("only"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	for _, index := range []int{-1, 1, 99} {
		if err := s.DeleteAt(index); err != nil {
			t.Fatalf("DeleteAt(%d) failed: %v", index, err)
		}
		if s.Len() != 1 {
			t.Errorf("DeleteAt(%d) changed the store, len=%d", index, s.Len())
		}
	}
	checkPersisted(t, path, s)
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s := newTestStore(t, path)

	for _, text := range []string{"a", "b"} {
		if err := s.Append(text); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty store after clear, len=%d", s.Len())
	}
	checkPersisted(t, path, s)
}

func TestMutationSequence_RoundTripLaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s := newTestStore(t, path)

	steps := []func() error{
		func() error { return s.Append("one") },
		func() error { return s.Append("two") },
		func() error { return s.DeleteAt(0) },
		func() error { return s.Append("three") },
		func() error { return s.DeleteAt(5) },
		func() error { return s.Clear() },
		func() error { return s.Append("after clear") },
	}

	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("Step %d failed: %v", i, err)
		}
		checkPersisted(t, path, s)
	}
}
