// Package image parses and canonicalizes OCI image references, derives a
// package-format runtime identifier and branch from them, and maps OCI
// architecture strings onto package-format architectures.
package image

import "strings"

const (
	// DefaultServer is used when a reference has no dotted first
	// component.
	DefaultServer = "docker.io"

	// DefaultTag is used when a reference has no explicit tag.
	DefaultTag = "latest"
)

// A parsed OCI image reference.
type Reference struct {
	Server string
	Name   string
	Tag    string
}

// Parses an OCI image reference of the form
// [server/]name[:tag]. The first slash-separated component is treated as
// the server only when it contains a dot; otherwise the whole string is
// treated as the image name and the server defaults to DefaultServer.
// A missing tag defaults to DefaultTag.
func Parse(ref string) Reference {
	rest := ref
	tag := DefaultTag

	if idx := strings.LastIndex(rest, ":"); idx >= 0 && !strings.Contains(rest[idx:], "/") {
		tag = rest[idx+1:]
		rest = rest[:idx]
	}

	server := DefaultServer
	name := rest

	if slash := strings.Index(rest, "/"); slash >= 0 {
		candidate := rest[:slash]
		if strings.Contains(candidate, ".") {
			server = candidate
			name = rest[slash+1:]
		}
	}

	return Reference{Server: server, Name: name, Tag: tag}
}

// Reconstructs a canonical "server/name:tag" string. Round-tripping
// through Parse always reproduces the same (server, name, tag) tuple,
// even though Format may not reproduce the exact string a caller
// originally typed (e.g. an implicit docker.io server becomes explicit).
func Format(server, name, tag string) string {
	var b strings.Builder
	if strings.Contains(server, ".") {
		b.WriteString(server)
		b.WriteByte('/')
	}
	b.WriteString(name)
	b.WriteByte(':')
	b.WriteString(tag)
	return b.String()
}

func (r Reference) String() string {
	return Format(r.Server, r.Name, r.Tag)
}

// Derives the branch from a tag: "latest" maps to "master", every other
// tag is used verbatim.
func Branch(tag string) string {
	if tag == DefaultTag {
		return "master"
	}
	return tag
}
