package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherImportsJSONLDumps(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "existing.jsonl"), []byte(jsonlOf(2)), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a dump"), 0644); err != nil {
		t.Fatal(err)
	}

	store := &fakeStore{}
	w := NewWatcher(dir, NewImporter(store), 100*time.Millisecond)

	imported := make(chan string, 4)
	w.onImport = func(path string, res Result, err error) {
		if err != nil {
			t.Errorf("importing %s: %v", path, err)
		}
		imported <- filepath.Base(path)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	}()

	wait := func(want string) {
		t.Helper()
		select {
		case got := <-imported:
			if got != want {
				t.Errorf("imported %s, want %s", got, want)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}

	wait("existing.jsonl")

	if err := os.WriteFile(filepath.Join(dir, "new.jsonl"), []byte(jsonlOf(3)), 0644); err != nil {
		t.Fatal(err)
	}
	wait("new.jsonl")

	if n := store.stored(); n != 5 {
		t.Errorf("stored %d hacks, want 5", n)
	}
	select {
	case got := <-imported:
		t.Errorf("unexpected import of %s", got)
	default:
	}
}

func TestWatcherDue(t *testing.T) {
	w := NewWatcher(t.TempDir(), nil, time.Second)
	now := time.Now()
	w.touch("/dumps/a.jsonl", now.Add(-2*time.Second))
	w.touch("/dumps/b.jsonl", now)
	w.touch("/dumps/c.txt", time.Time{})

	due := w.due(now)
	if len(due) != 1 || due[0] != "/dumps/a.jsonl" {
		t.Fatalf("due = %v", due)
	}
	if len(w.due(now)) != 0 {
		t.Error("due files should be removed from pending")
	}
	if got := w.due(now.Add(time.Second)); len(got) != 1 {
		t.Errorf("due after settle = %v", got)
	}
}
