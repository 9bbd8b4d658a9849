// Package layout builds a runtime tree out of a checked-out OCI image root:
// it prepares the tree (cleanup, /usr-merge, files/ relocation), synthesizes
// the metadata, appdata, and init-script files a sandboxed runtime needs,
// and commits the result onto a runtime/<id>/<arch>/<branch> ref.
package layout
