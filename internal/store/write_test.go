package store

import (
	"os"
	"testing"
	"time"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

func TestManifestGCLabels(t *testing.T) {
	m := ocispec.Manifest{
		Config: ocispec.Descriptor{Digest: "sha256:config"},
		Layers: []ocispec.Descriptor{
			{Digest: "sha256:layer0"},
			{Digest: "sha256:layer1"},
		},
	}

	labels := manifestGCLabels(m)

	want := map[string]string{
		"containerd.io/gc.ref.content.config": "sha256:config",
		"containerd.io/gc.ref.content.l.0":    "sha256:layer0",
		"containerd.io/gc.ref.content.l.1":    "sha256:layer1",
	}
	if len(labels) != len(want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
	for k, v := range want {
		if labels[k] != v {
			t.Errorf("labels[%q] = %q, want %q", k, labels[k], v)
		}
	}
}

func TestManifestGCLabelsNoLayers(t *testing.T) {
	m := ocispec.Manifest{Config: ocispec.Descriptor{Digest: "sha256:config"}}
	labels := manifestGCLabels(m)
	if len(labels) != 1 {
		t.Fatalf("labels = %v, want a single config entry", labels)
	}
}

func TestCanonicalMode(t *testing.T) {
	if got := canonicalMode(fakeFileInfo{isDir: true}); got != 0755 {
		t.Errorf("dir mode = %o, want 0755", got)
	}
	if got := canonicalMode(fakeFileInfo{mode: 0755}); got != 0755 {
		t.Errorf("executable mode = %o, want 0755", got)
	}
	if got := canonicalMode(fakeFileInfo{mode: 0644}); got != 0644 {
		t.Errorf("regular mode = %o, want 0644", got)
	}
	if got := canonicalMode(fakeFileInfo{mode: os.ModeSymlink | 0777}); got != 0777 {
		t.Errorf("symlink mode = %o, want 0777", got)
	}
}

func TestIsGzip(t *testing.T) {
	tests := []struct {
		mediaType string
		want      bool
	}{
		{"application/vnd.oci.image.layer.v1.tar+gzip", true},
		{"application/vnd.oci.image.layer.v1.tar", false},
		{"application/vnd.docker.image.rootfs.diff.tar.gzip", true},
	}
	for _, tt := range tests {
		if got := isGzip(tt.mediaType); got != tt.want {
			t.Errorf("isGzip(%q) = %v, want %v", tt.mediaType, got, tt.want)
		}
	}
}

type fakeFileInfo struct {
	isDir bool
	mode  os.FileMode
}

func (f fakeFileInfo) Name() string { return "entry" }
func (f fakeFileInfo) Size() int64  { return 0 }
func (f fakeFileInfo) Mode() os.FileMode {
	if f.isDir {
		return os.ModeDir | 0755
	}
	return f.mode
}
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return f.isDir }
func (f fakeFileInfo) Sys() any           { return nil }
