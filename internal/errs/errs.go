// Package errs implements the sentinel-error wrapping pattern used across
// flatpod: every package defines a small set of sentinel errors and wraps
// the underlying cause so that both errors.Is(err, sentinel) and
// errors.Is(err, cause) hold.
package errs

import "fmt"

// Wraps cause under sentinel. errors.Is(result, sentinel) and
// errors.Is(result, cause) both hold.
func Wrap(sentinel, cause error) error {
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// Like Wrap, but with a formatted message instead of a bare cause. The
// format string may itself contain a trailing %w to chain a nested error,
// e.g. Wrapf(ErrConvert, "stage %s: %w", name, err).
func Wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}
