package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestMemDB(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	if _, err := db.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing key: %v, want ErrNotFound", err)
	}
	if err := db.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := db.Get([]byte("k"))
	if err != nil || string(got) != "v" {
		t.Fatalf("get = %q, %v", got, err)
	}
	ok, err := db.Has([]byte("k"))
	if err != nil || !ok {
		t.Fatalf("has = %v, %v", ok, err)
	}

	// Stored values are isolated from caller buffers.
	buf := []byte("w")
	if err := db.Put([]byte("k2"), buf); err != nil {
		t.Fatalf("put: %v", err)
	}
	buf[0] = 'x'
	got, err = db.Get([]byte("k2"))
	if err != nil || string(got) != "w" {
		t.Fatalf("get after caller mutation = %q, %v", got, err)
	}
	got[0] = 'y'
	again, err := db.Get([]byte("k2"))
	if err != nil || string(again) != "w" {
		t.Fatalf("get after reader mutation = %q, %v", again, err)
	}
}

func TestLevelDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	db, err := NewLevelDB(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := db.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing key: %v, want ErrNotFound", err)
	}
	if err := db.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := db.Get([]byte("k"))
	if err != nil || string(got) != "v" {
		t.Fatalf("get = %q, %v", got, err)
	}
	ok, err := db.Has([]byte("k"))
	if err != nil || !ok {
		t.Fatalf("has = %v, %v", ok, err)
	}
}
