package image

import "strings"

const (
	// UndefinedArch is returned by MapArch when the OCI architecture has
	// no known package-format counterpart.
	UndefinedArch = "undefined"

	// defaultServerReversedID is the reverse-DNS prefix used for images
	// pulled from the default registry. docker.io's reverse-DNS form
	// would naively be "io.docker", but the convention this tool follows
	// (matching how Docker Hub images are addressed elsewhere in the
	// packaging ecosystem) is the vendor's own reverse domain.
	defaultServerReversedID = "com.docker.io"

	// libraryNamespace is prepended to unqualified Docker Hub image
	// names (e.g. "alpine" becomes "library/alpine") the way Docker Hub
	// itself does internally for official images.
	libraryNamespace = "library"
)

var archTable = map[string]string{
	"386":      "i386",
	"amd64":    "x86_64",
	"arm":      "arm",
	"arm64":    "aarch64",
	"mips":     "mips",
	"mipsle":   "mipsel",
	"mips64":   "mips64",
	"mips64le": "mips64el",
}

// Maps an OCI architecture string (as found in image config, e.g.
// runtime.GOARCH values) to the corresponding package-format architecture
// name. Returns (UndefinedArch, false) for architectures with no known
// mapping.
func MapArch(ociArch string) (string, bool) {
	a, ok := archTable[ociArch]
	if !ok {
		return UndefinedArch, false
	}
	return a, true
}

// Derives the reverse-DNS style runtime identifier for a reference.
//
// For the default registry, the identifier is defaultServerReversedID with
// the image name (implicitly namespaced under "library" when it has no
// namespace of its own) appended. For any other server, the dot-separated
// components of the server are reversed and the image name is appended.
// In both cases, remaining slashes are replaced with dots.
func RuntimeID(ref Reference) string {
	name := ref.Name
	var prefix string

	if ref.Server == DefaultServer {
		prefix = defaultServerReversedID
		if !strings.Contains(name, "/") {
			name = libraryNamespace + "/" + name
		}
	} else {
		parts := strings.Split(ref.Server, ".")
		reverse(parts)
		prefix = strings.Join(parts, ".")
	}

	id := prefix + "." + name
	return strings.ReplaceAll(id, "/", ".")
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// The resolved id/arch/branch triple that names a runtime in the target
// package system, e.g. "com.docker.io.library.alpine/x86_64/3.18".
type RuntimeInfo struct {
	ID     string
	Arch   string
	Branch string
}

// Derives runtime info for a reference, honoring explicit id/branch
// overrides (an empty override falls back to the derived value). Arch is
// left empty; the caller fills it in once the image config's architecture
// is known (MapArch).
func DeriveRuntimeInfo(ref Reference, overrideID, overrideBranch string) RuntimeInfo {
	id := overrideID
	if id == "" {
		id = RuntimeID(ref)
	}
	branch := overrideBranch
	if branch == "" {
		branch = Branch(ref.Tag)
	}
	return RuntimeInfo{ID: id, Branch: branch}
}

// The "id/arch/branch" form used as an object-store ref suffix and as the
// argument to the target package manager.
func (r RuntimeInfo) FullName() string {
	return r.ID + "/" + r.Arch + "/" + r.Branch
}
