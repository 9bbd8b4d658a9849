package tree

import "errors"

// Errors returned by tree operations.
var (
	ErrTree     = errors.New("tree operation failed")
	ErrUsrMerge = errors.New("usr-merge failed")
)
