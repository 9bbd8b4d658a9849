// Package logx provides the slog.Handler flatpod installs as the default
// logger: a single mutable handler whose level, formatter, and output
// stream can be reconfigured after flags are parsed, so the very first log
// line written from init() and the last line written before exit share the
// same handler instance.
package logx

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Formats a single log record into a line of output.
type Formatter interface {
	Format(r slog.Record, group string, attrs []slog.Attr) []byte
}

// A slog.Handler whose level, formatter, and destination stream can be
// changed after construction. cmd/flatpod installs one at startup seeded
// from build-time linker flags; internal/cli reconfigures it once flags
// have been parsed.
type Handler struct {
	mu        sync.Mutex
	level     slog.LevelVar
	formatter Formatter
	stream    io.Writer
	group     string
	attrs     []slog.Attr
}

// Creates a handler at slog.LevelInfo writing to os.Stderr with the default
// pretty formatter.
func NewHandler() *Handler {
	return &Handler{
		formatter: NewPrettyFormatter(isatty(os.Stderr)),
		stream:    os.Stderr,
	}
}

// Sets the minimum level a record must have to be emitted.
func (h *Handler) SetLevel(level slog.Level) {
	h.level.Set(level)
}

// Replaces the formatter used to render records.
func (h *Handler) SetFormatter(f Formatter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.formatter = f
}

// Replaces the destination stream.
func (h *Handler) SetStream(w io.Writer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stream = w
}

// Flush is a no-op; the handler writes synchronously. It exists so callers
// can reconfigure level, formatter, and stream, then commit the change with
// a single call regardless of whether a future version buffers output.
func (h *Handler) Flush() {}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	formatter, w := h.formatter, h.stream
	group := h.group
	attrs := append([]slog.Attr(nil), h.attrs...)
	h.mu.Unlock()

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	_, err := w.Write(formatter.Format(r, group, attrs))
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	clone := *h
	if h.group == "" {
		clone.group = name
	} else {
		clone.group = h.group + "." + name
	}
	return &clone
}

// Reports whether f looks like an interactive terminal.
func isatty(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// True when the group chain built up by WithGroup should be rendered.
func hasGroup(group string) bool {
	return strings.TrimSpace(group) != ""
}
