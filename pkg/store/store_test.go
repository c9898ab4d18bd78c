package store_test

import (
	"path/filepath"
	"testing"

	"src.livedoc.dev/pkg/store"
	"src.livedoc.dev/pkg/store/storetest"
)

func TestHistory(t *testing.T) {
	storetest.TestHistory(t, store.MustTempStore(t))
}

func TestNewStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	s, err := store.NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	s.AddEntry("remember me")
	s.Close()

	s, err = store.NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	text, err := s.Entry(1)
	if text != "remember me" || err != nil {
		t.Errorf("Entry(1) after reopening = (%q, %v)", text, err)
	}
}

func TestNewStore_BadPath(t *testing.T) {
	_, err := store.NewStore(filepath.Join(t.TempDir(), "no", "such", "db"))
	if err == nil {
		t.Errorf("NewStore with bad path returned nil error")
	}
}
