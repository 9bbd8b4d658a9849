package janitor

import "errors"

// ErrJanitor wraps the errors this package raises itself and the store and
// lister errors it propagates. Errors from layout.ParseFlatpodInfo and
// manifest.ReadManifestFromStore are returned unwrapped.
var ErrJanitor = errors.New("janitor error")
