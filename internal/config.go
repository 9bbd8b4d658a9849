package internal

import (
	"strconv"
	"sync/atomic"
)

// Default log verbosity, settable at build time via linker flags so a
// packaged binary can ship with e.g. quiet mode baked in without the
// caller passing a flag. Once internal/cli.RootCmd's flags are parsed, a
// mode is on when either its flag or its build-time default enables it.
var (
	quietMode   atomic.Bool
	debugMode   atomic.Bool
	verboseMode atomic.Bool
)

// Seeds the atomics above from the rawQuiet/rawDebug/rawVerbose linker
// strings. Unparsable or unset values leave the atomic at its zero value
// (false).
func init() {
	if v, err := strconv.ParseBool(rawQuiet); err == nil {
		quietMode.Store(v)
	}
	if v, err := strconv.ParseBool(rawDebug); err == nil {
		debugMode.Store(v)
	}
	if v, err := strconv.ParseBool(rawVerbose); err == nil {
		verboseMode.Store(v)
	}
}

// Reports whether quiet mode's build-time default is set.
func IsQuiet() bool {
	return quietMode.Load()
}

// Overrides quiet mode's default, e.g. after parsing --quiet.
func SetQuiet(enabled bool) {
	quietMode.Store(enabled)
}

// Reports whether debug mode's build-time default is set.
func IsDebug() bool {
	return debugMode.Load()
}

// Overrides debug mode's default, e.g. after parsing --debug.
func SetDebug(enabled bool) {
	debugMode.Store(enabled)
}

// Reports whether verbose logging's build-time default is set.
func IsVerbose() bool {
	return verboseMode.Load()
}

// Overrides verbose logging's default, e.g. after parsing --verbose.
func SetVerbose(enabled bool) {
	verboseMode.Store(enabled)
}
