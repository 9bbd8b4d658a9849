package layout

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAndParseFlatpodInfo(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFlatpodInfo(dir, "alpine:3.18"); err != nil {
		t.Fatalf("WriteFlatpodInfo: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "files", ".flatpod-info"))
	if err != nil {
		t.Fatalf("read .flatpod-info: %v", err)
	}

	image, err := ParseFlatpodInfo(data)
	if err != nil {
		t.Fatalf("ParseFlatpodInfo: %v", err)
	}
	if image != "alpine:3.18" {
		t.Errorf("image = %q, want alpine:3.18", image)
	}
}

func TestParseFlatpodInfoMissingSection(t *testing.T) {
	_, err := ParseFlatpodInfo([]byte("[Other]\nfoo=bar\n"))
	if err == nil {
		t.Fatal("ParseFlatpodInfo() = nil, want error")
	}
}
