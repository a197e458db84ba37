package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"app-2026-03-01.log",
		"app-2026-03-05.log",
		"app-2026-03-07.log",
		"app-notadate.log",
		"other-2026-01-01.log",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cleanupOldLogs(dir, 3, time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC))

	for name, want := range map[string]bool{
		"app-2026-03-01.log": false,
		"app-2026-03-05.log": true,
		"app-2026-03-07.log": true,
		"app-notadate.log":   true,
		"other-2026-01-01.log":         true,
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		if exists := err == nil; exists != want {
			t.Fatalf("%s: expected exists=%v, got %v", name, want, exists)
		}
	}
}
