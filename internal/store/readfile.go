package store

import (
	"archive/tar"
	"context"
	"io"

	"github.com/flatpodhq/flatpod/internal/errs"
)

// Reads a single file out of a commit's tree without checking out the
// whole tree to disk, used by the janitor to inspect an installed
// runtime's .flatpod-info without a full checkout. path is matched against
// tar entry names exactly (forward-slash separated, relative to the tree
// root). Returns ErrNotFound if the tree has no such entry.
func (s *Store) ReadFile(ctx context.Context, c Commit, path string) ([]byte, error) {
	m, err := s.readManifest(ctx, c.Manifest)
	if err != nil {
		return nil, err
	}
	if len(m.Layers) == 0 {
		return nil, ErrNotFound
	}

	r, closer, err := s.openLayer(ctx, m.Layers[0])
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, errs.Wrap(ErrStore, err)
		}
		if hdr.Name == path {
			return io.ReadAll(tr)
		}
	}
}
