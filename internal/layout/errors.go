package layout

import "errors"

// ErrLayout wraps the errors this package raises itself. Errors from
// manifest.ReadManifest (in Checkout) and from the store's
// RegenerateSummary (in Commit) are returned unwrapped.
var ErrLayout = errors.New("runtime layout error")
