package store

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/flatpodhq/flatpod/internal/errs"
	"github.com/flatpodhq/flatpod/internal/paths"
)

// Checks out ref's tree onto target with union-overwrite semantics: new
// entries are created, existing files are replaced in place, and nothing
// under target outside the tree's own paths is touched. Returns
// ErrNotFound if ref does not exist.
func (s *Store) Checkout(ctx context.Context, ref, target string) error {
	c, err := s.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	return s.checkoutCommit(ctx, c, target)
}

func (s *Store) checkoutCommit(ctx context.Context, c Commit, target string) error {
	m, err := s.readManifest(ctx, c.Manifest)
	if err != nil {
		return err
	}
	if len(m.Layers) == 0 {
		return nil
	}
	return s.extractLayer(ctx, m.Layers[0], target)
}

func (s *Store) extractLayer(ctx context.Context, desc ocispec.Descriptor, target string) error {
	r, closer, err := s.openLayer(ctx, desc)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := os.MkdirAll(target, paths.DefaultDirMode); err != nil {
		return errs.Wrap(ErrStore, err)
	}

	return extractTar(r, target)
}

// Opens desc's content as a plain tar stream. A gzip-compressed layer is
// read from its decompressed copy in the on-disk decompression cache.
func (s *Store) openLayer(ctx context.Context, desc ocispec.Descriptor) (io.Reader, io.Closer, error) {
	ra, err := s.client.ContentStore().ReaderAt(ctx, desc)
	if err != nil {
		return nil, nil, errs.Wrap(ErrStore, err)
	}

	sr := io.NewSectionReader(ra, 0, desc.Size)
	if !isGzip(desc.MediaType) {
		return sr, ra, nil
	}

	f, err := s.decompressCached(desc, sr)
	if err != nil {
		ra.Close()
		return nil, nil, err
	}
	return f, multiCloser{f, ra}, nil
}

type multiCloser struct {
	a io.Closer
	b io.Closer
}

func (m multiCloser) Close() error {
	err1 := m.a.Close()
	err2 := m.b.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// Decompresses a gzip layer to paths.UncompressedCache(), keyed by digest,
// so a layer shared across multiple checkouts (e.g. a common base image)
// is only ever gunzipped once.
func (s *Store) decompressCached(desc ocispec.Descriptor, r io.Reader) (*os.File, error) {
	cacheDir := paths.UncompressedCache()
	cachePath := filepath.Join(cacheDir, desc.Digest.Encoded())

	if f, err := os.Open(cachePath); err == nil {
		return f, nil
	}

	if err := os.MkdirAll(cacheDir, paths.DefaultDirMode); err != nil {
		return nil, errs.Wrap(ErrStore, err)
	}

	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, errs.Wrap(ErrStore, err)
	}
	defer gr.Close()

	tmp, err := os.CreateTemp(cacheDir, "tmp-*")
	if err != nil {
		return nil, errs.Wrap(ErrStore, err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, gr); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, errs.Wrap(ErrStore, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, errs.Wrap(ErrStore, err)
	}
	if err := os.Rename(tmpPath, cachePath); err != nil {
		os.Remove(tmpPath)
		return nil, errs.Wrap(ErrStore, err)
	}

	f, err := os.Open(cachePath)
	if err != nil {
		return nil, errs.Wrap(ErrStore, err)
	}
	return f, nil
}

func isGzip(mediaType string) bool {
	return strings.HasSuffix(mediaType, "+gzip") || strings.HasSuffix(mediaType, ".gzip")
}

// Extracts a plain tar stream onto target with union-overwrite semantics.
func extractTar(r io.Reader, target string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errs.Wrap(ErrStore, err)
		}

		dest := filepath.Join(target, hdr.Name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, os.FileMode(hdr.Mode)|0700); err != nil {
				return errs.Wrap(ErrStore, err)
			}
		case tar.TypeSymlink:
			os.Remove(dest)
			if err := os.MkdirAll(filepath.Dir(dest), paths.DefaultDirMode); err != nil {
				return errs.Wrap(ErrStore, err)
			}
			if err := os.Symlink(hdr.Linkname, dest); err != nil {
				return errs.Wrap(ErrStore, err)
			}
		default:
			if err := os.MkdirAll(filepath.Dir(dest), paths.DefaultDirMode); err != nil {
				return errs.Wrap(ErrStore, err)
			}
			f, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
			if err != nil {
				return errs.Wrap(ErrStore, err)
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return errs.Wrap(ErrStore, err)
			}
			if err := f.Close(); err != nil {
				return errs.Wrap(ErrStore, err)
			}
		}
	}
}

// Loads an OCI manifest from the content store.
func (s *Store) readManifest(ctx context.Context, desc ocispec.Descriptor) (ocispec.Manifest, error) {
	r, closer, err := s.openBlob(ctx, desc)
	if err != nil {
		return ocispec.Manifest{}, err
	}
	defer closer.Close()

	var m ocispec.Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return ocispec.Manifest{}, errs.Wrap(ErrStore, err)
	}
	return m, nil
}

func (s *Store) openBlob(ctx context.Context, desc ocispec.Descriptor) (io.Reader, io.Closer, error) {
	ra, err := s.client.ContentStore().ReaderAt(ctx, desc)
	if err != nil {
		return nil, nil, errs.Wrap(ErrStore, err)
	}
	return io.NewSectionReader(ra, 0, desc.Size), ra, nil
}
