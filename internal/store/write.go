package store

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/containerd/containerd/v2/core/content"
	digest "github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/flatpodhq/flatpod/internal/errs"
)

// Media type used for the single-layer tree blobs this package writes.
// The store also reads real image layers, which may arrive with the
// non-gzip variant; isGzip (checkout.go) dispatches on suffix rather than an
// exact match against this constant.
const treeLayerMediaType = "application/vnd.oci.image.layer.v1.tar+gzip"

// The metadata a commit's config blob carries: the human-readable subject
// and, for every commit but the first on a ref, the parent commit's
// manifest digest.
type commitConfig struct {
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"createdAt"`
	Parent    string    `json:"parent,omitempty"`
}

// Tars and gzips root, canonicalizing ownership and permissions so that
// two directories with identical content but different temp-directory
// permissions produce byte-identical, identically-digested blobs. Returns
// the descriptor of the written blob.
func (s *Store) WriteDirectory(ctx context.Context, root string) (ocispec.Descriptor, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		return writeTreeEntry(tw, root, path, d)
	})

	closeErr := tw.Close()
	gzErr := gw.Close()

	if err != nil {
		return ocispec.Descriptor{}, errs.Wrap(ErrStore, err)
	}
	if closeErr != nil {
		return ocispec.Descriptor{}, errs.Wrap(ErrStore, closeErr)
	}
	if gzErr != nil {
		return ocispec.Descriptor{}, errs.Wrap(ErrStore, gzErr)
	}

	data := buf.Bytes()
	desc := ocispec.Descriptor{
		MediaType: treeLayerMediaType,
		Digest:    digest.FromBytes(data),
		Size:      int64(len(data)),
	}

	ref := "flatpod-tree-" + desc.Digest.Encoded()
	if err := content.WriteBlob(ctx, s.client.ContentStore(), ref, bytes.NewReader(data), desc); err != nil {
		return ocispec.Descriptor{}, errs.Wrap(ErrStore, err)
	}
	return desc, nil
}

// Writes a commit whose tree is the given descriptor. If parent is
// non-nil, its manifest digest is recorded so the commit history can be
// walked backward the way a git or OSTree commit chain can.
func (s *Store) WriteCommit(ctx context.Context, parent *Commit, subject string, tree ocispec.Descriptor) (Commit, error) {
	cfg := commitConfig{Subject: subject, CreatedAt: time.Now().UTC()}
	if parent != nil {
		cfg.Parent = parent.Manifest.Digest.String()
	}

	cfgDesc, err := s.writeBlob(ctx, ocispec.MediaTypeImageConfig, cfg, "flatpod-commit-config")
	if err != nil {
		return Commit{}, errs.Wrap(ErrStore, err)
	}

	m := ocispec.Manifest{
		MediaType: ocispec.MediaTypeImageManifest,
		Config:    cfgDesc,
		Layers:    []ocispec.Descriptor{tree},
		Annotations: map[string]string{
			"flatpod.subject": subject,
		},
	}
	if parent != nil {
		m.Annotations["flatpod.parent"] = parent.Manifest.Digest.String()
	}

	manifestDesc, err := s.writeBlob(ctx, ocispec.MediaTypeImageManifest, m, "flatpod-commit-manifest", content.WithLabels(manifestGCLabels(m)))
	if err != nil {
		return Commit{}, errs.Wrap(ErrStore, err)
	}

	return Commit{Manifest: manifestDesc}, nil
}

// Serializes a value and writes it to the content store, returning the
// descriptor that references the stored blob.
func (s *Store) writeBlob(ctx context.Context, mediaType string, v any, ref string, opts ...content.Opt) (ocispec.Descriptor, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	desc := ocispec.Descriptor{
		MediaType: mediaType,
		Digest:    digest.FromBytes(b),
		Size:      int64(len(b)),
	}
	if err := content.WriteBlob(ctx, s.client.ContentStore(), ref, bytes.NewReader(b), desc, opts...); err != nil {
		return ocispec.Descriptor{}, err
	}
	return desc, nil
}

// Computes containerd GC reference labels for a manifest's children, so
// the garbage collector can trace reachability from the manifest blob to
// its config and layer.
func manifestGCLabels(m ocispec.Manifest) map[string]string {
	labels := map[string]string{
		"containerd.io/gc.ref.content.config": m.Config.Digest.String(),
	}
	for i, layer := range m.Layers {
		key := fmt.Sprintf("containerd.io/gc.ref.content.l.%d", i)
		labels[key] = layer.Digest.String()
	}
	return labels
}

// Retained for interface parity with the object-store contract's hardlink
// scan step. containerd's content store already deduplicates identical
// blobs by digest, so there is nothing to scan; logged at debug level so
// the step is still visible when tracing a conversion end to end.
func (s *Store) ScanHardlinks(_ string) {
	slog.Debug("scan hardlinks skipped: content store dedups by digest")
}

func writeTreeEntry(tw *tar.Writer, root, path string, d fs.DirEntry) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return err
	}

	info, err := d.Info()
	if err != nil {
		return err
	}

	link := ""
	if info.Mode()&os.ModeSymlink != 0 {
		link, err = os.Readlink(path)
		if err != nil {
			return err
		}
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return err
	}
	hdr.Name = filepath.ToSlash(rel)
	hdr.Mode = canonicalMode(info)
	hdr.Uid, hdr.Gid = 0, 0
	hdr.Uname, hdr.Gname = "", ""
	hdr.ModTime = time.Unix(0, 0)

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	if info.Mode().IsRegular() {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	}
	return nil
}

// Canonicalizes a filesystem entry's mode so identical trees checked out
// with different umasks still produce byte-identical commits: directories
// are always 0755, symlinks 0777 (the target's own mode governs access),
// executables 0755, and everything else 0644.
func canonicalMode(info os.FileInfo) int64 {
	switch {
	case info.IsDir():
		return 0755
	case info.Mode()&os.ModeSymlink != 0:
		return 0777
	case info.Mode()&0111 != 0:
		return 0755
	default:
		return 0644
	}
}
