package layout

import (
	"fmt"
	"os"
	"strings"

	"github.com/flatpodhq/flatpod/internal/errs"
	"github.com/flatpodhq/flatpod/internal/paths"
)

// A minimal INI document builder: sections in insertion order, each with
// key=value lines in insertion order. Good enough for the two files this
// package writes (metadata, .flatpod-info); neither needs quoting, arrays,
// or re-parsing round trips.
type iniWriter struct {
	sections []iniSection
}

type iniSection struct {
	name  string
	lines []string
}

func (w *iniWriter) section(name string) *iniSection {
	w.sections = append(w.sections, iniSection{name: name})
	return &w.sections[len(w.sections)-1]
}

func (s *iniSection) set(key, value string) {
	s.lines = append(s.lines, fmt.Sprintf("%s=%s", key, value))
}

func (w *iniWriter) String() string {
	var b strings.Builder
	for _, s := range w.sections {
		fmt.Fprintf(&b, "[%s]\n", s.name)
		for _, line := range s.lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (w *iniWriter) writeFile(path string) error {
	if err := os.WriteFile(path, []byte(w.String()), paths.DefaultFileMode); err != nil {
		return errs.Wrap(ErrLayout, err)
	}
	return nil
}
