package tree

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestWalkVisitsEveryEntryRelativeToRoot(t *testing.T) {
	root := t.TempDir()
	mustMkdirAll(t, filepath.Join(root, "sub"))
	mustWriteFile(t, filepath.Join(root, "a.txt"), "a")
	mustWriteFile(t, filepath.Join(root, "sub", "b.txt"), "b")

	var got []string
	if err := Walk(root, func(e Entry) error {
		got = append(got, e.Path)
		return nil
	}); err != nil {
		t.Fatalf("Walk: %v", err)
	}

	sort.Strings(got)
	want := []string{"a.txt", "sub", filepath.Join("sub", "b.txt")}
	sort.Strings(want)

	if len(got) != len(want) {
		t.Fatalf("visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("visited %v, want %v", got, want)
			break
		}
	}
}

func TestWalkDoesNotDescendIntoSymlinkedDirectories(t *testing.T) {
	root := t.TempDir()
	real := filepath.Join(root, "real")
	mustMkdirAll(t, real)
	mustWriteFile(t, filepath.Join(real, "inside.txt"), "x")

	if err := os.Symlink(real, filepath.Join(root, "link")); err != nil {
		t.Fatal(err)
	}

	var got []string
	if err := Walk(root, func(e Entry) error {
		got = append(got, e.Path)
		return nil
	}); err != nil {
		t.Fatalf("Walk: %v", err)
	}

	for _, p := range got {
		if p == filepath.Join("link", "inside.txt") {
			t.Fatalf("Walk descended into symlinked directory: %v", got)
		}
	}
}

func TestWalkMissingRoot(t *testing.T) {
	err := Walk(filepath.Join(t.TempDir(), "nope"), func(Entry) error {
		t.Fatal("fn called for missing root")
		return nil
	})
	if err == nil {
		t.Fatal("Walk on missing root = nil, want error")
	}
}
