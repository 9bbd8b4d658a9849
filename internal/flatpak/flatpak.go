// Package flatpak shells out to the flatpak CLI to register the object
// store as a local remote and to install or update runtimes built from
// it. It never touches the object store or the build tree directly; its
// only job is driving the target package system's own commands.
package flatpak

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/flatpodhq/flatpod/internal/errs"
)

// Wraps every error this package returns.
var ErrFlatpak = errors.New("flatpak error")

// Name of the local remote flatpod registers and installs from.
const RemoteName = "flatpod-origin"

// Name of the flatpak binary invoked by every operation. Overridable in
// tests.
var BinaryName = "flatpak"

// A runtime as reported by `flatpak list`.
type Runtime struct {
	ID     string
	Arch   string
	Branch string
	Origin string
}

// Registers or updates the flatpod-origin remote pointing at repoURI (a
// file:// URI for the object store's on-disk path), with GPG verification
// disabled since the store is local and unsigned.
func EnsureRemote(ctx context.Context, repoURI string) error {
	if err := run(ctx, "remote-add", "--if-not-exists", "--no-gpg-verify", RemoteName, repoURI); err != nil {
		return err
	}
	return run(ctx, "remote-modify", "--no-gpg-verify", RemoteName)
}

// Installs (id, arch, branch) from the flatpod-origin remote. If the
// runtime is already installed, falls back to Update instead of treating
// it as an error, matching the source system's own recovery for this
// case.
func Install(ctx context.Context, id, arch, branch string) error {
	err := run(ctx, "install", "-y", "--noninteractive", RemoteName,
		fmt.Sprintf("runtime/%s/%s/%s", id, arch, branch))
	if err == nil {
		return nil
	}
	if isAlreadyInstalled(err) {
		return Update(ctx, id, arch, branch)
	}
	return err
}

// Updates an already-installed runtime to the current commit on its
// branch.
func Update(ctx context.Context, id, arch, branch string) error {
	return run(ctx, "update", "-y", "--noninteractive",
		fmt.Sprintf("runtime/%s/%s/%s", id, arch, branch))
}

// Lists runtimes installed from flatpod-origin.
func ListInstalled(ctx context.Context) ([]Runtime, error) {
	out, err := output(ctx, "list", "--runtime", "--columns=ref,origin")
	if err != nil {
		return nil, err
	}

	var runtimes []Runtime
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		ref, origin := fields[0], fields[1]
		if origin != RemoteName {
			continue
		}
		parts := strings.Split(ref, "/")
		if len(parts) != 4 || parts[0] != "runtime" {
			continue
		}
		runtimes = append(runtimes, Runtime{
			ID:     parts[1],
			Arch:   parts[2],
			Branch: parts[3],
			Origin: origin,
		})
	}
	return runtimes, nil
}

func isAlreadyInstalled(err error) bool {
	return strings.Contains(err.Error(), "already installed")
}

func run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, BinaryName, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errs.Wrapf(ErrFlatpak, "%s: %s", strings.Join(args, " "), strings.TrimSpace(string(out)))
	}
	return nil
}

func output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, BinaryName, args...)
	out, err := cmd.Output()
	if err != nil {
		return "", errs.Wrapf(ErrFlatpak, "%s: %v", strings.Join(args, " "), err)
	}
	return string(out), nil
}
