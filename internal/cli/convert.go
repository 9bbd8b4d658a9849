package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/flatpodhq/flatpod/internal/convert"
	"github.com/flatpodhq/flatpod/internal/errs"
	"github.com/flatpodhq/flatpod/internal/paths"
	"github.com/flatpodhq/flatpod/internal/store"
)

// Runs the pull-through-install pipeline for a single image reference.
func runConvert(ctx context.Context, image string) error {
	if err := paths.EnsureLayout(); err != nil {
		return errs.Wrap(ErrBadArgument, err)
	}

	// Set once, at the outermost layer, so nothing downstream needs to
	// know that build output belongs under the builds directory.
	if err := os.Setenv("TMPDIR", paths.Builds()); err != nil {
		return errs.Wrap(ErrBadArgument, err)
	}

	st, err := store.New(store.DefaultAddress, store.DefaultNamespace)
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := convert.Run(ctx, st, convert.Options{
		Image:         image,
		RuntimeID:     RootCmd.RuntimeID,
		RuntimeBranch: RootCmd.RuntimeBranch,
		KeepBuildDir:  RootCmd.KeepBuildDir,
	})
	if err != nil {
		return err
	}

	fmt.Println(result.FullName)
	return nil
}
