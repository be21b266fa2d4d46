package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !DirExists(dir) || DirExists(file) {
		t.Errorf("DirExists: dir=%v file=%v", DirExists(dir), DirExists(file))
	}
	if !FileExists(file) || FileExists(dir) {
		t.Errorf("FileExists: file=%v dir=%v", FileExists(file), FileExists(dir))
	}
	if DirExists(filepath.Join(dir, "missing")) || FileExists(filepath.Join(dir, "missing")) {
		t.Error("missing path reported as existing")
	}

	// Stat errors other than not-exist must report false, not panic.
	tooLong := filepath.Join(dir, strings.Repeat("a", 5000))
	if DirExists(tooLong) || FileExists(tooLong) {
		t.Error("unstatable path reported as existing")
	}
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(path); err != nil {
		t.Fatal(err)
	}
	if !DirExists(path) {
		t.Fatal("directory not created")
	}
	if err := EnsureDir(path); err != nil {
		t.Fatalf("second call: %v", err)
	}
}
