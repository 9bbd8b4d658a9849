package tree

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMergeToSimple(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")

	mustMkdirAll(t, filepath.Join(src, "sub"))
	mustWriteFile(t, filepath.Join(src, "a.txt"), "a")
	mustWriteFile(t, filepath.Join(src, "sub", "b.txt"), "b")

	if err := MergeTo(src, dst, MergeOptions{Root: root}); err != nil {
		t.Fatalf("MergeTo: %v", err)
	}

	assertFile(t, filepath.Join(dst, "a.txt"), "a")
	assertFile(t, filepath.Join(dst, "sub", "b.txt"), "b")

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("src not removed: %v", err)
	}
}

func TestMergeToSymlinkEquivalenceSrcResolvesToDst(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")

	mustMkdirAll(t, src)
	mustMkdirAll(t, dst)
	mustWriteFile(t, filepath.Join(dst, "bin"), "real")

	if err := os.Symlink(filepath.Join(dst, "bin"), filepath.Join(src, "bin")); err != nil {
		t.Fatal(err)
	}

	if err := MergeTo(src, dst, MergeOptions{Root: root}); err != nil {
		t.Fatalf("MergeTo: %v", err)
	}

	assertFile(t, filepath.Join(dst, "bin"), "real")
}

func TestMergeToSymlinkEquivalenceDstResolvesToSrc(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")

	mustMkdirAll(t, src)
	mustMkdirAll(t, dst)
	mustWriteFile(t, filepath.Join(src, "bin"), "real")

	// Absolute link targets are resolved under MergeOptions.Root.
	if err := os.Symlink("/src/bin", filepath.Join(dst, "bin")); err != nil {
		t.Fatal(err)
	}

	if err := MergeTo(src, dst, MergeOptions{Root: root}); err != nil {
		t.Fatalf("MergeTo: %v", err)
	}

	assertFile(t, filepath.Join(dst, "bin"), "real")
}

func TestMergeToSelfChild(t *testing.T) {
	root := t.TempDir()
	tree := filepath.Join(root, "tree")
	filesDir := filepath.Join(tree, "files")

	mustMkdirAll(t, filesDir)
	mustWriteFile(t, filepath.Join(tree, "a.txt"), "a")

	if err := MergeTo(tree, filesDir, MergeOptions{Root: tree, KeepRoot: true}); err != nil {
		t.Fatalf("MergeTo: %v", err)
	}

	assertFile(t, filepath.Join(filesDir, "a.txt"), "a")
	if _, err := os.Stat(filesDir); err != nil {
		t.Fatalf("files dir removed: %v", err)
	}
}

func TestMergeToMissingSrc(t *testing.T) {
	root := t.TempDir()
	if err := MergeTo(filepath.Join(root, "nope"), filepath.Join(root, "dst"), MergeOptions{Root: root}); err != nil {
		t.Fatalf("MergeTo on missing src should be a no-op, got %v", err)
	}
}

func mustMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatal(err)
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func assertFile(t *testing.T, path, want string) {
	t.Helper()
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if string(got) != want {
		t.Errorf("%s = %q, want %q", path, got, want)
	}
}
