package manifest

import "errors"

// ErrManifest is the sentinel wrapped around the read and decode errors
// this package returns. ReadManifestFromStore returns errors from the
// StoreReader's Resolve and ReadFile unwrapped.
var ErrManifest = errors.New("manifest read failed")
