package janitor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/flatpodhq/flatpod/internal/errs"
	"github.com/flatpodhq/flatpod/internal/image"
	"github.com/flatpodhq/flatpod/internal/layout"
	"github.com/flatpodhq/flatpod/internal/manifest"
	"github.com/flatpodhq/flatpod/internal/paths"
	"github.com/flatpodhq/flatpod/internal/progress"
	"github.com/flatpodhq/flatpod/internal/store"
	"github.com/flatpodhq/flatpod/internal/tree"
)

// A janitor run mode.
type Mode string

const (
	ModeAll    Mode = "all"
	ModeOCI    Mode = "oci"
	ModeUnused Mode = "unused"
	ModePrune  Mode = "prune"
)

// An installed runtime as reported by the target package system, reduced
// to what unused-refs computation needs.
type InstalledRuntime struct {
	ID     string
	Arch   string
	Branch string
}

// Queries the target package system for every installed runtime whose
// origin is flatpod-origin. Decoupled from the flatpak package via a plain
// function type so this package's own tests never shell out.
type InstalledLister func(ctx context.Context) ([]InstalledRuntime, error)

// The subset of *store.Store the unused-refs computation needs: listing
// and resolving refs, reading a committed tree's files, and running a
// transaction. Kept as a local interface, rather than threading
// *store.Store through every function, so tests can substitute an
// in-memory fake instead of a real containerd-backed store.
type refStore interface {
	manifest.StoreReader
	ListRefs(ctx context.Context, prefix string) ([]string, error)
	BeginTransaction(ctx context.Context) (refTransaction, error)
	Prune(ctx context.Context) (store.PruneStats, error)
}

// The transaction lifecycle refStore needs.
type refTransaction interface {
	Context() context.Context
	SetRef(ref string, c *store.Commit)
	Commit() error
	Abort() error
}

// Adapts *store.Store to refStore. *store.Store.BeginTransaction returns
// the concrete *store.Transaction rather than refTransaction, so
// *store.Store itself does not satisfy refStore (Go requires an exact
// method signature match, not just an assignable return type); this
// wrapper exists purely to convert that one return type at the call
// boundary.
type storeAdapter struct{ *store.Store }

func (a storeAdapter) BeginTransaction(ctx context.Context) (refTransaction, error) {
	return a.Store.BeginTransaction(ctx)
}

// Runs the janitor in the given mode and returns megabytes reclaimed.
func Run(ctx context.Context, st *store.Store, mode Mode, listInstalled InstalledLister) (float64, error) {
	return run(ctx, storeAdapter{st}, mode, listInstalled)
}

func run(ctx context.Context, st refStore, mode Mode, listInstalled InstalledLister) (float64, error) {
	var bytesFreed int64

	slog.Debug("cleaning build directories", "mode", mode)
	n, err := cleanBuilds()
	if err != nil {
		return 0, err
	}
	bytesFreed += n

	if mode == ModeAll {
		slog.Debug("purging uncompressed object cache")
		n, err := cleanUncompressedCache()
		if err != nil {
			return 0, err
		}
		bytesFreed += n
	}

	if mode != ModePrune {
		if err := deleteUnusedRefs(ctx, st, mode, listInstalled); err != nil {
			return 0, err
		}
	}

	slog.Debug("pruning unreferenced objects")
	stats, err := st.Prune(ctx)
	if err != nil {
		return 0, errs.Wrap(ErrJanitor, err)
	}
	bytesFreed += stats.BytesDeleted

	return float64(bytesFreed) / (1024 * 1024), nil
}

// Recursively deletes everything under the builds directory, fixing
// permissions first so directories left read-only by a container layer
// (common for image root filesystems) do not block deletion.
func cleanBuilds() (int64, error) {
	return deleteContents(paths.Builds())
}

func cleanUncompressedCache() (int64, error) {
	return deleteContents(paths.UncompressedCache())
}

func deleteContents(dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errs.Wrap(ErrJanitor, err)
	}

	fixPermissions(dir)

	reporter := progress.New(os.Stderr, "cleaning "+filepath.Base(dir))
	reporter.SetTotal(len(entries))

	var total int64
	for _, e := range entries {
		stats, err := tree.Delete(filepath.Join(dir, e.Name()), tree.DeleteOptions{CountBytes: true})
		if err != nil {
			return total, errs.Wrap(ErrJanitor, err)
		}
		total += stats.Bytes
		reporter.Step()
	}
	reporter.Done()
	return total, nil
}

// Recursively makes every directory under dir writable so a subsequent
// delete isn't blocked by a container layer that shipped read-only
// directories. Uses tree.Walk rather than a bespoke filepath.WalkDir call
// so this package and internal/tree share one definition of "recursive
// walk" over a build tree.
func fixPermissions(dir string) {
	os.Chmod(dir, paths.DefaultDirMode)
	tree.Walk(dir, func(e tree.Entry) error {
		if e.Info.IsDir() {
			os.Chmod(filepath.Join(dir, e.Path), paths.DefaultDirMode)
		}
		return nil
	})
}

func deleteUnusedRefs(ctx context.Context, st refStore, mode Mode, listInstalled InstalledLister) error {
	txn, err := st.BeginTransaction(ctx)
	if err != nil {
		return errs.Wrap(ErrJanitor, err)
	}

	unused := make(map[string]struct{})

	if mode == ModeUnused || mode == ModeAll {
		set, err := computeUnused(txn.Context(), st, listInstalled, mode == ModeAll)
		if err != nil {
			txn.Abort()
			return err
		}
		for ref := range set {
			unused[ref] = struct{}{}
		}
	}

	if mode == ModeOCI || mode == ModeAll {
		refs, err := st.ListRefs(txn.Context(), "ociimage/")
		if err != nil {
			txn.Abort()
			return errs.Wrap(ErrJanitor, err)
		}
		for _, r := range refs {
			unused["ociimage/"+r] = struct{}{}
		}
	}

	for ref := range unused {
		txn.SetRef(ref, nil)
	}

	if err := txn.Commit(); err != nil {
		return errs.Wrap(ErrJanitor, err)
	}
	return nil
}

// Computes the set of runtime/* refs (and, if includeOCI, their
// ociimage/* dependents) that no installed runtime still needs. Rather
// than build a reverse dependency graph, this walks the live set
// (installed runtimes and what they resolve to) and subtracts it from the
// full candidate set, which keeps memory flat and tolerates missing
// intermediate refs.
func computeUnused(ctx context.Context, st refStore, listInstalled InstalledLister, includeOCI bool) (map[string]struct{}, error) {
	var candidateNames []string
	var err error
	if includeOCI {
		candidateNames, err = st.ListRefs(ctx, "")
	} else {
		var runtimeRefs []string
		runtimeRefs, err = st.ListRefs(ctx, "runtime/")
		for _, r := range runtimeRefs {
			candidateNames = append(candidateNames, "runtime/"+r)
		}
	}
	if err != nil {
		return nil, errs.Wrap(ErrJanitor, err)
	}

	candidates := make(map[string]struct{}, len(candidateNames))
	for _, c := range candidateNames {
		candidates[c] = struct{}{}
	}

	installed, err := listInstalled(ctx)
	if err != nil {
		return nil, errs.Wrap(ErrJanitor, err)
	}

	for _, rt := range installed {
		info := image.RuntimeInfo{ID: rt.ID, Arch: rt.Arch, Branch: rt.Branch}
		ref := "runtime/" + info.FullName()
		delete(candidates, ref)

		if !includeOCI {
			continue
		}

		if err := removeOCIDependents(ctx, st, ref, candidates); err != nil {
			return nil, err
		}
	}

	return candidates, nil
}

func removeOCIDependents(ctx context.Context, st refStore, runtimeRef string, candidates map[string]struct{}) error {
	c, err := st.Resolve(ctx, runtimeRef)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return errs.Wrap(ErrJanitor, err)
	}

	data, err := st.ReadFile(ctx, c, "files/.flatpod-info")
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return errs.Wrap(ErrJanitor, err)
	}

	rawImage, err := layout.ParseFlatpodInfo(data)
	if err != nil {
		return err
	}

	imageRef := "ociimage/" + image.Escape(rawImage)
	delete(candidates, imageRef)

	m, err := manifest.ReadManifestFromStore(ctx, st, imageRef)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	delete(candidates, "ociimage/"+manifest.Token(m.ConfigDigest))
	for _, d := range m.LayerDigests {
		delete(candidates, "ociimage/"+manifest.Token(d))
	}
	return nil
}
