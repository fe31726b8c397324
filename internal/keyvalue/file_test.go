package keyvalue

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")
	ctx := context.Background()

	s, err := NewFile(path, "correct horse")
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	if err := s.Set(ctx, "session", []byte(`{"token":"abc"}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// a fresh store over the same file must read the value back
	reopened, err := NewFile(path, "correct horse")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Get(ctx, "session")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"token":"abc"}` {
		t.Fatalf("got %q", got)
	}
}

func TestFileStoreMissingKey(t *testing.T) {
	s, err := NewFile(filepath.Join(t.TempDir(), "state.bin"), "pw")
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	_, err = s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFileStoreRemove(t *testing.T) {
	s, err := NewFile(filepath.Join(t.TempDir(), "state.bin"), "pw")
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")
	ctx := context.Background()

	s, err := NewFile(path, "right")
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := s.Set(ctx, "k", []byte("secret")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	wrong, err := NewFile(path, "wrong")
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if _, err := wrong.Get(ctx, "k"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("wrong passphrase read err = %v, want decrypt failure", err)
	}
}

func TestFileStoreCiphertextAtRest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")
	ctx := context.Background()

	s, err := NewFile(path, "pw")
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := s.Set(ctx, "token", []byte("very-secret-token")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(raw) == "" {
		t.Fatal("state file is empty")
	}
	if bytes.Contains(raw, []byte("very-secret-token")) {
		t.Fatal("plaintext leaked into the state file")
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	value := []byte("original")
	if err := s.Set(ctx, "k", value); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value[0] = 'X'

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "original" {
		t.Fatalf("got %q, caller mutation leaked in", got)
	}

	got[0] = 'Y'
	again, _ := s.Get(ctx, "k")
	if string(again) != "original" {
		t.Fatalf("got %q, returned slice aliases the store", again)
	}
}
