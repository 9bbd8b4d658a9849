package image

import (
	"fmt"
	"strings"
)

// Percent-encodes every byte outside the RFC 3986 unreserved set
// (ALPHA / DIGIT / "-" / "." / "_" / "~"), then replaces the percent signs
// with underscores so the result is safe to use as a single path segment
// or object-store ref component. This is hand-rolled rather than built on
// net/url: url.QueryEscape encodes space as "+" and follows form-encoding
// rules that diverge from the plain byte-for-byte percent-encoding this
// token needs, and the exact output is a testable property, so a bespoke
// byte-level encoder is used instead of adapting a general-purpose one.
func Escape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return strings.ReplaceAll(b.String(), "%", "_")
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~':
		return true
	default:
		return false
	}
}
