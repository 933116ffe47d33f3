package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"skolapp-quizsync/internal/domain"
)

func TestDocumentStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewDocumentStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := first.Set(ctx, "shared-quizzes", []byte(`[{"id":"s1"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	second, err := NewDocumentStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := second.Get(ctx, "shared-quizzes")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `[{"id":"s1"}]` {
		t.Fatalf("unexpected document %q", got)
	}

	if _, err := os.Stat(filepath.Join(dir, "shared-quizzes.json")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected temp files cleaned up, got %d entries", len(entries))
	}
}

func TestDocumentStoreMissingAndInvalidKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewDocumentStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Get(ctx, "quizzes-cache"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.Set(ctx, "../escape", []byte("x")); err == nil {
		t.Fatalf("expected invalid key error")
	}
}
