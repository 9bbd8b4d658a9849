// Parses flags and configures logging for the flatpod CLI.
//
// flatpod takes a single positional image reference and converts it, unless
// --cleanup is given, in which case it runs the Repository Janitor instead
// and ignores the positional argument. After parsing, the global logger is
// reconfigured to reflect the final level and verbosity before the pipeline
// runs.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/flatpodhq/flatpod/internal"
	"github.com/flatpodhq/flatpod/internal/errs"
	"github.com/flatpodhq/flatpod/internal/logx"
)

// ErrBadArgument wraps invalid CLI argument combinations.
var ErrBadArgument = errors.New("bad argument")

// Root command flags. flatpod is a single-shot CLI, not a set of
// subcommands: everything is controlled by flags plus one optional
// positional image reference.
var RootCmd struct {
	Quiet         bool   `short:"q" help:"Suppress informational output."`
	Verbose       bool   `short:"v" help:"Enable verbose output."`
	Debug         bool   `short:"d" help:"Enable debug output."`
	KeepBuildDir  bool   `help:"Do not delete the temp build directory on success."`
	RuntimeID     string `short:"i" name:"runtime-id" help:"Override the derived runtime id." placeholder:"ID"`
	RuntimeBranch string `short:"b" name:"runtime-branch" help:"Override the derived runtime branch." placeholder:"BRANCH"`
	Cleanup       string `enum:"all,oci,unused,prune," help:"Run the Repository Janitor in this mode and exit." placeholder:"MODE"`
	Version       kong.VersionFlag
	Image         string `arg:"" optional:"" help:"Container image reference to convert." placeholder:"IMAGE"`
}

// Parses arguments, configures logging, and runs the conversion or cleanup
// pipeline.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Converts a container image into a sandboxed application runtime."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
	)

	configureLogger()

	return run(ctx)
}

func run(ctx context.Context) error {
	if RootCmd.Cleanup == "" && RootCmd.Image == "" {
		return errs.Wrap(ErrBadArgument, fmt.Errorf("an image reference or --cleanup is required"))
	}

	if RootCmd.Cleanup != "" {
		return runCleanup(ctx, RootCmd.Cleanup)
	}
	return runConvert(ctx, RootCmd.Image)
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	handler, ok := slog.Default().Handler().(*logx.Handler)
	if !ok {
		return
	}

	debug := RootCmd.Debug || internal.IsDebug()
	quiet := RootCmd.Quiet || internal.IsQuiet()
	verbose := RootCmd.Verbose || internal.IsVerbose()

	formatter := logx.NewPrettyFormatter(isatty(os.Stderr))
	formatter.SetVerbose(verbose)

	switch {
	case debug:
		handler.SetLevel(slog.LevelDebug)
	case quiet:
		handler.SetLevel(slog.LevelWarn)
	default:
		handler.SetLevel(slog.LevelInfo)
	}

	handler.SetFormatter(formatter)
	handler.SetStream(os.Stderr)
	handler.Flush()
}

func isatty(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
