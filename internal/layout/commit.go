package layout

import (
	"context"
	"errors"
	"time"

	"github.com/flatpodhq/flatpod/internal/errs"
	"github.com/flatpodhq/flatpod/internal/image"
	"github.com/flatpodhq/flatpod/internal/paths"
	"github.com/flatpodhq/flatpod/internal/store"
)

// Commits buildDir onto runtime/<fullName>, parented on that ref's current
// commit if it exists, and regenerates the object store summary. The
// transaction is always committed or aborted before returning, even on
// failure partway through.
func Commit(ctx context.Context, st *store.Store, buildDir string, info image.RuntimeInfo) error {
	txn, err := st.BeginTransaction(ctx)
	if err != nil {
		return errs.Wrap(ErrLayout, err)
	}

	if err := commitTxn(st, txn, buildDir, info); err != nil {
		txn.Abort()
		return err
	}
	if err := txn.Commit(); err != nil {
		return errs.Wrap(ErrLayout, err)
	}

	return st.RegenerateSummary(ctx, paths.Repo())
}

func commitTxn(st *store.Store, txn *store.Transaction, buildDir string, info image.RuntimeInfo) error {
	ctx := txn.Context()

	st.ScanHardlinks(buildDir)

	ref := "runtime/" + info.FullName()
	var parent *store.Commit
	if c, err := st.Resolve(ctx, ref); err == nil {
		parent = &c
	} else if !errors.Is(err, store.ErrNotFound) {
		return errs.Wrap(ErrLayout, err)
	}

	tree, err := st.WriteDirectory(ctx, buildDir)
	if err != nil {
		return errs.Wrap(ErrLayout, err)
	}

	subject := "flatpod update on " + time.Now().UTC().Format(time.RFC3339)
	commit, err := st.WriteCommit(ctx, parent, subject, tree)
	if err != nil {
		return errs.Wrap(ErrLayout, err)
	}

	txn.SetRef(ref, &commit)
	return nil
}
