package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/notematch/internal/storage"
)

func TestServeAPIReturnsListenError(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "scores.db")
	t.Setenv("NOTEMATCH_DB", dbPath)
	flagHTTPAddr = "127.0.0.1:-1"
	flagMemory = false
	t.Cleanup(func() { flagHTTPAddr = "" })

	if err := serveAPI(apiCmd, log.New(io.Discard)); err == nil {
		t.Fatal("serveAPI with an invalid address should return an error")
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("reopen database: %v", err)
	}
	defer store.Close()
	if _, err := store.Top(context.Background(), 10); err != nil {
		t.Errorf("Top after serveAPI returned: %v", err)
	}
}

func TestServeAPIReturnsOpenError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NOTEMATCH_DB", filepath.Join(blocker, "scores.db"))
	flagHTTPAddr = "127.0.0.1:0"
	flagMemory = false
	t.Cleanup(func() { flagHTTPAddr = "" })

	if err := serveAPI(apiCmd, log.New(io.Discard)); err == nil {
		t.Fatal("serveAPI with an unusable database path should return an error")
	}
}
