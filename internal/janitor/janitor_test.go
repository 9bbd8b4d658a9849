package janitor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDeleteContentsRemovesEntriesAndCountsBytes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("world!"), 0644); err != nil {
		t.Fatal(err)
	}

	n, err := deleteContents(dir)
	if err != nil {
		t.Fatalf("deleteContents: %v", err)
	}
	if n != int64(len("hello")+len("world!")) {
		t.Errorf("bytes = %d, want %d", n, len("hello")+len("world!"))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("dir not empty after deleteContents: %v", entries)
	}
}

func TestDeleteContentsMissingDirIsNoOp(t *testing.T) {
	n, err := deleteContents(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("deleteContents: %v", err)
	}
	if n != 0 {
		t.Errorf("bytes = %d, want 0", n)
	}
}

func TestFixPermissionsUnblocksDeletion(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "readonly")
	if err := os.MkdirAll(sub, 0555); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "f"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	fixPermissions(dir)

	if _, err := deleteContents(dir); err != nil {
		t.Fatalf("deleteContents after fixPermissions: %v", err)
	}
}
