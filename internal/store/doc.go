// Package store implements the Object Store Adapter over containerd's
// content, image, and lease APIs: refs are containerd image tags, commits
// are single-layer OCI manifests, and transactions batch tag updates under
// one containerd lease so the ephemeral blobs a transaction writes survive
// garbage collection until the transaction either commits or aborts.
//
//	st, err := store.New(store.DefaultAddress, store.DefaultNamespace)
//	if err != nil {
//		return err
//	}
//	defer st.Close()
//
//	tree, err := st.WriteDirectory(ctx, buildDir)
//	commit, err := st.WriteCommit(ctx, nil, "initial import", tree)
//
//	tx, err := st.BeginTransaction(ctx)
//	tx.SetRef("runtime/com.example.app/x86_64/stable", &commit)
//	err = tx.Commit()
package store
