// Package tree implements the filesystem transformations the Runtime
// Layout Builder applies to a checked-out image tree: symlink-aware
// directory merging, the /usr-merge that collapses usr/local and usr into
// the tree root, and the cleanup pass that removes container-specific
// cruft before the tree is committed to the object store.
//
// None of these operations follow symlinks when walking a directory; a
// symlink is always treated as a leaf, never as a door into another part
// of the tree.
package tree
