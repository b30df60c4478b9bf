package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRun_Help(t *testing.T) {
	if got := run([]string{"--help"}); got != exitOK {
		t.Errorf("run(--help) = %d, want %d", got, exitOK)
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	if got := run([]string{"--definitely-not-a-flag"}); got != exitUsage {
		t.Errorf("run() = %d, want %d", got, exitUsage)
	}
}

func TestRun_MissingBook(t *testing.T) {
	dir := t.TempDir()
	got := run([]string{
		"--book", dir,
		"--config", filepath.Join(dir, "book.yaml"),
		"--dest", filepath.Join(dir, "out"),
	})
	if got != exitBuild {
		t.Errorf("run() = %d, want %d", got, exitBuild)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "book.yaml")
	if err := os.WriteFile(cfgPath, []byte("profiles: {}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := run([]string{"--book", dir, "--config", cfgPath}); got != exitUsage {
		t.Errorf("run() = %d, want %d", got, exitUsage)
	}
}
