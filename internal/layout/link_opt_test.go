package layout

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteLinkOptWhenOptExists(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "files", "opt"), 0755); err != nil {
		t.Fatal(err)
	}

	if err := WriteLinkOpt(dir); err != nil {
		t.Fatalf("WriteLinkOpt: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "files", "etc", "oci-init.d", "link-opt.sh"))
	if err != nil {
		t.Fatalf("read link-opt.sh: %v", err)
	}
	if string(data) != linkOptScript {
		t.Errorf("link-opt.sh = %q, want %q", data, linkOptScript)
	}
}

func TestWriteLinkOptWhenOptMissing(t *testing.T) {
	dir := t.TempDir()
	if err := WriteLinkOpt(dir); err != nil {
		t.Fatalf("WriteLinkOpt: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "files", "etc", "oci-init.d")); !os.IsNotExist(err) {
		t.Errorf("oci-init.d should not exist when files/opt is absent")
	}
}
