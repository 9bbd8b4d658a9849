// Package progress renders a single, incrementally-updated line of status
// output to a terminal, used by the conversion pipeline to show checkout
// and cleanup progress without flooding the log with one line per file.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Reports progress on a single line, rewritten in place with a carriage
// return. Safe for concurrent use.
type Reporter struct {
	mu    sync.Mutex
	w     io.Writer
	label string
	count int
	total int
	color bool
}

// Creates a reporter writing to w under the given label.
func New(w io.Writer, label string) *Reporter {
	return &Reporter{w: w, label: label, color: isTerminal(w)}
}

// Sets the total step count, shown as "count/total" once known. Zero (the
// default) means the total is unknown and only the count is shown.
func (r *Reporter) SetTotal(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = n
}

// Advances the counter by one and re-renders the line.
func (r *Reporter) Step() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	r.render()
}

// Finalizes the line with a trailing newline so subsequent output starts
// fresh.
func (r *Reporter) Done() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w)
}

func (r *Reporter) render() {
	label := r.label
	if r.color {
		label = color.New(color.FgCyan).Sprint(label)
	}
	if r.total > 0 {
		fmt.Fprintf(r.w, "\r%s: %d/%d", label, r.count, r.total)
		return
	}
	fmt.Fprintf(r.w, "\r%s: %d", label, r.count)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
