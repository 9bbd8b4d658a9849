package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/flatpodhq/flatpod/internal"
	"github.com/flatpodhq/flatpod/internal/cli"
	"github.com/flatpodhq/flatpod/internal/logx"
	"github.com/flatpodhq/flatpod/internal/puller"
)

// The entry point for the flatpod CLI.
//
// Initializes logging and executes the root command. If any error occurs
// during execution, it exits with a code reflecting the error kind: the
// external pull tool's own exit code on a pull failure, 1 on argument
// validation failure or any other uncaught error.
func main() {
	slog.SetDefault(logger())

	slog.Debug("build", "version", internal.VersionString())

	slog.Debug("flatpod is running",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		slog.Error(err.Error())

		var pullErr *puller.PullError
		if errors.As(err, &pullErr) {
			if pullErr.Stderr != "" {
				os.Stderr.WriteString(pullErr.Stderr)
			}
			os.Exit(pullErr.ExitCode)
		}

		os.Exit(1)
	}
}

// Creates a logger seeded from build-time linker flags.
//
// The logger is reconfigured after flag parsing via cli.Execute.
func logger() *slog.Logger {
	handler := logx.NewHandler()
	handler.SetLevel(logLevel())
	return slog.New(handler.WithGroup(internal.Name))
}

// Returns the log level derived from build-time linker flags.
func logLevel() slog.Level {
	if internal.IsDebug() {
		return slog.LevelDebug
	}
	if internal.IsQuiet() {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
