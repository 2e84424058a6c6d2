package sqlitestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Makepad-fr/todogroups/internal/storage"
)

func TestRoundTripSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "todogroups.db")

	s, err := New(ctx, path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := s.Get(ctx, "todos"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Get missing: got %v", err)
	}
	if err := s.Set(ctx, "todos", "[1]"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "todos", "[2]"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s, err = New(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	v, err := s.Get(ctx, "todos")
	if err != nil || v != "[2]" {
		t.Fatalf("Get after reopen: got %q, %v", v, err)
	}

	if err := s.Remove(ctx, "todos"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := s.Get(ctx, "todos"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Get after Remove: got %v", err)
	}
}

func TestInMemoryDatabase(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()
	if err := s.Set(ctx, "theme", "dark"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, _ := s.Get(ctx, "theme"); v != "dark" {
		t.Errorf("got %q, want dark", v)
	}
}
