package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")

	kv, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	var v string
	ok, err := kv.Get("missing", &v)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if ok {
		t.Error("Expected missing key to be absent")
	}
}

func TestPutGet_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	kv, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err := kv.Put("credential", "gsk-test"); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if err := kv.Put("list", []string{"a", "b"}); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	var cred string
	ok, err := kv.Get("credential", &cred)
	if err != nil || !ok {
		t.Fatalf("Get() failed: ok=%v err=%v", ok, err)
	}
	if cred != "gsk-test" {
		t.Errorf("Expected 'gsk-test', got '%s'", cred)
	}

	var list []string
	ok, err = kv.Get("list", &list)
	if err != nil || !ok {
		t.Fatalf("Get() failed: ok=%v err=%v", ok, err)
	}
	if len(list) != 2 || list[0] != "a" || list[1] != "b" {
		t.Errorf("Unexpected list value: %v", list)
	}
}

func TestPut_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	kv, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := kv.Put("selectedModel", "whisper-large-v3"); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	// Simulated restart
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}

	var model string
	ok, err := reopened.Get("selectedModel", &model)
	if err != nil || !ok {
		t.Fatalf("Get() after reopen failed: ok=%v err=%v", ok, err)
	}
	if model != "whisper-large-v3" {
		t.Errorf("Expected persisted model, got '%s'", model)
	}
}

func TestDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	kv, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err := kv.Put("k", 1); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if err := kv.Delete("k"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if err := kv.Delete("k"); err != nil {
		t.Fatalf("Delete() of absent key failed: %v", err)
	}

	var v int
	ok, _ := kv.Get("k", &v)
	if ok {
		t.Error("Expected key to be gone after delete")
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	ok, _ = reopened.Get("k", &v)
	if ok {
		t.Error("Expected delete to be persisted")
	}
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := Open(path); err == nil {
		t.Error("Expected error opening corrupt store")
	}
}
