package cli

import (
	"context"
	"fmt"

	"github.com/flatpodhq/flatpod/internal/errs"
	"github.com/flatpodhq/flatpod/internal/flatpak"
	"github.com/flatpodhq/flatpod/internal/janitor"
	"github.com/flatpodhq/flatpod/internal/paths"
	"github.com/flatpodhq/flatpod/internal/store"
)

// Runs the Repository Janitor in the given mode and prints the amount of
// space it reclaimed.
func runCleanup(ctx context.Context, mode string) error {
	if err := paths.EnsureLayout(); err != nil {
		return errs.Wrap(ErrBadArgument, err)
	}

	st, err := store.New(store.DefaultAddress, store.DefaultNamespace)
	if err != nil {
		return err
	}
	defer st.Close()

	mb, err := janitor.Run(ctx, st, janitor.Mode(mode), listInstalled)
	if err != nil {
		return err
	}

	fmt.Printf("%.2fmb deleted\n", mb)
	return nil
}

// Bridges flatpak.ListInstalled to the janitor.InstalledLister shape so
// the janitor package never depends on the flatpak package directly and
// stays testable without shelling out.
func listInstalled(ctx context.Context) ([]janitor.InstalledRuntime, error) {
	runtimes, err := flatpak.ListInstalled(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]janitor.InstalledRuntime, len(runtimes))
	for i, r := range runtimes {
		out[i] = janitor.InstalledRuntime{ID: r.ID, Arch: r.Arch, Branch: r.Branch}
	}
	return out, nil
}
