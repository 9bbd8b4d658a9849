// Package convert orchestrates the end-to-end image-to-runtime conversion
// pipeline: pull, checkout, tree preparation, layout synthesis, commit,
// and install, for a single image reference.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flatpodhq/flatpod/internal/errs"
	"github.com/flatpodhq/flatpod/internal/image"
	"github.com/flatpodhq/flatpod/internal/layout"
	"github.com/flatpodhq/flatpod/internal/manifest"
	"github.com/flatpodhq/flatpod/internal/paths"
	"github.com/flatpodhq/flatpod/internal/puller"
	"github.com/flatpodhq/flatpod/internal/store"
	"github.com/flatpodhq/flatpod/internal/tree"
)

// ErrConvert wraps the errors this package raises itself. Errors from the
// puller, layout and manifest packages are returned as those packages
// produce them.
var ErrConvert = errors.New("conversion failed")

// Options for a single conversion run.
type Options struct {
	Image         string // raw image reference, exactly as given on the CLI
	RuntimeID     string // overrides the derived runtime id if non-empty
	RuntimeBranch string // overrides the derived runtime branch if non-empty
	KeepBuildDir  bool
}

// The outcome of a successful conversion.
type Result struct {
	FullName string // id/arch/branch
	BuildDir string
}

// Runs the full pipeline for opts.Image against st. On success, the build
// directory is deleted unless opts.KeepBuildDir is set; on failure, it is
// always left on disk so the user can inspect the partial tree.
func Run(ctx context.Context, st *store.Store, opts Options) (*Result, error) {
	ref := image.Parse(opts.Image)
	info := image.DeriveRuntimeInfo(ref, opts.RuntimeID, opts.RuntimeBranch)

	slog.Info("pulling image", "image", opts.Image)
	if err := puller.Push(ctx, opts.Image, store.DefaultAddress, store.DefaultNamespace); err != nil {
		return nil, err
	}

	escaped := image.Escape(opts.Image)
	buildDir, err := paths.NewBuildDir(escaped)
	if err != nil {
		return nil, errs.Wrap(ErrConvert, err)
	}

	result, err := build(ctx, st, buildDir, opts.Image, info)
	if err != nil {
		slog.Error(fmt.Sprintf("conversion failed, build directory left on disk: %s", buildDir), "err", err)
		return nil, err
	}

	if !opts.KeepBuildDir {
		if _, err := tree.Delete(buildDir, tree.DeleteOptions{}); err != nil {
			return nil, errs.Wrap(ErrConvert, err)
		}
	}

	return result, nil
}

func build(ctx context.Context, st *store.Store, buildDir, rawImage string, info image.RuntimeInfo) (*Result, error) {
	slog.Debug("checking out image layers", "dir", buildDir)
	if _, err := layout.Checkout(ctx, st, rawImage, buildDir); err != nil {
		return nil, err
	}

	cfg, err := manifest.ReadConfig(buildDir)
	if err != nil {
		return nil, err
	}

	arch, ok := image.MapArch(cfg.Architecture)
	if !ok {
		return nil, errs.Wrapf(ErrConvert, "unsupported architecture %q", cfg.Architecture)
	}
	info.Arch = arch

	slog.Debug("preparing tree", "dir", buildDir)
	if err := layout.Prepare(buildDir); err != nil {
		return nil, err
	}

	if err := layout.WriteMetadata(buildDir, info, cfg); err != nil {
		return nil, err
	}
	if err := layout.WriteAppdata(ctx, buildDir, info); err != nil {
		return nil, err
	}
	if err := layout.WriteOCIRun(buildDir, cfg); err != nil {
		return nil, err
	}
	if err := layout.WriteOCIInit(buildDir); err != nil {
		return nil, err
	}
	if err := layout.WriteLinkOpt(buildDir); err != nil {
		return nil, err
	}
	if err := layout.WriteFlatpodInfo(buildDir, rawImage); err != nil {
		return nil, err
	}

	slog.Info("committing runtime", "ref", "runtime/"+info.FullName())
	if err := layout.Commit(ctx, st, buildDir, info); err != nil {
		return nil, err
	}

	if err := layout.Install(ctx, paths.Repo(), info); err != nil {
		return nil, err
	}

	return &Result{FullName: info.FullName(), BuildDir: buildDir}, nil
}
