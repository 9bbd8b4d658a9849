// Package janitor implements the repository cleanup pipeline: removing
// stale build directories, clearing the decompression cache, computing and
// deleting unused refs, and pruning unreferenced objects out of the object
// store.
package janitor
