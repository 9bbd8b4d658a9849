package store

import (
	"context"

	"github.com/containerd/containerd/v2/core/images"
	"github.com/containerd/errdefs"

	"github.com/flatpodhq/flatpod/internal/errs"
)

// A batch of ref updates applied atomically with respect to garbage
// collection: every blob written while the transaction is open is
// protected from GC by a containerd lease until Commit or Abort releases
// it. The ref updates themselves are applied one at a time when Commit is
// called; a crash mid-Commit can leave some updates applied and others
// not, which is a real limitation relative to OSTree's own transaction
// file. A conversion run sets only one ref per transaction; a cleanup run
// deletes every unused ref in one transaction, so a crash mid-Commit there
// can leave some of those refs deleted and others still present.
type Transaction struct {
	store *Store
	ctx   context.Context
	done  func(context.Context) error
	ops   []refOp
}

type refOp struct {
	ref    string
	commit *Commit // nil means delete
}

// Begins a transaction. The context returned by Context must be used for
// any blob writes that should be protected until the transaction commits
// or aborts.
func (s *Store) BeginTransaction(ctx context.Context) (*Transaction, error) {
	leaseCtx, done, err := s.client.WithLease(ctx)
	if err != nil {
		return nil, errs.Wrap(ErrStore, err)
	}
	return &Transaction{store: s, ctx: leaseCtx, done: done}, nil
}

// Returns the lease-scoped context blob writes for this transaction must
// use.
func (t *Transaction) Context() context.Context {
	return t.ctx
}

// Queues ref to point at commit once the transaction commits. A nil commit
// queues ref for deletion.
func (t *Transaction) SetRef(ref string, commit *Commit) {
	t.ops = append(t.ops, refOp{ref: ref, commit: commit})
}

// Applies every queued ref update and releases the transaction's lease.
func (t *Transaction) Commit() error {
	defer t.done(context.Background())

	is := t.store.client.ImageService()
	for _, op := range t.ops {
		if op.commit == nil {
			if err := is.Delete(t.ctx, op.ref); err != nil && !errdefs.IsNotFound(err) {
				return errs.Wrap(ErrStore, err)
			}
			continue
		}

		img := images.Image{Name: op.ref, Target: op.commit.Manifest}
		if _, err := is.Create(t.ctx, img); err != nil {
			if !errdefs.IsAlreadyExists(err) {
				return errs.Wrap(ErrStore, err)
			}
			if _, err := is.Update(t.ctx, img, "target"); err != nil {
				return errs.Wrap(ErrStore, err)
			}
		}
	}
	return nil
}

// Discards every queued ref update and releases the transaction's lease.
func (t *Transaction) Abort() error {
	return t.done(context.Background())
}
