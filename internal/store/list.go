package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/flatpodhq/flatpod/internal/errs"
	"github.com/flatpodhq/flatpod/internal/paths"
)

// Lists refs whose name starts with prefix, with the prefix stripped from
// each result (an empty prefix lists every ref, unstripped). Stripping the
// prefix mirrors the underlying ref-listing convention this store's design
// is modeled on: callers that need the full ref name re-add the prefix
// themselves, which keeps a candidate set free of the specific namespace
// it was gathered under until the caller decides to re-qualify it.
func (s *Store) ListRefs(ctx context.Context, prefix string) ([]string, error) {
	var filter string
	if prefix != "" {
		filter = "name~=^" + regexp.QuoteMeta(prefix)
	}

	imgs, err := s.client.ImageService().List(ctx, filter)
	if err != nil {
		return nil, errs.Wrap(ErrStore, err)
	}

	refs := make([]string, 0, len(imgs))
	for _, img := range imgs {
		name := img.Name
		if prefix != "" {
			name = strings.TrimPrefix(name, prefix)
		}
		refs = append(refs, name)
	}
	return refs, nil
}

// Writes a JSON snapshot of every current ref to repoPath/summary.json.
// containerd has no separate on-disk "summary" file the way OSTree does
// for HTTP-served repos (refs are always listable live from the image
// service), so this exists purely as a cheap, human-inspectable cache of
// the ref set at a point in time; nothing in flatpod reads it back.
func (s *Store) RegenerateSummary(ctx context.Context, repoPath string) error {
	refs, err := s.ListRefs(ctx, "")
	if err != nil {
		return err
	}
	sort.Strings(refs)

	data, err := json.MarshalIndent(refs, "", "  ")
	if err != nil {
		return errs.Wrap(ErrStore, err)
	}

	return os.WriteFile(filepath.Join(repoPath, "summary.json"), data, paths.DefaultFileMode)
}
