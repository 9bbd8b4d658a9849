package logx

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fatih/color"
)

// Renders records as a single colorized line:
//
//	14:03:07 [INFO ] flatpod: converted alpine:3.18 key=value
//
// Colors are only emitted when the formatter was constructed for a
// terminal. In verbose mode, attributes are appended as key=value pairs;
// otherwise only the message is printed.
type PrettyFormatter struct {
	color   bool
	verbose bool
}

// Creates a formatter. color controls whether ANSI codes are emitted; pass
// the result of checking whether the destination stream is a terminal.
func NewPrettyFormatter(useColor bool) *PrettyFormatter {
	return &PrettyFormatter{color: useColor}
}

// Enables or disables attribute rendering.
func (f *PrettyFormatter) SetVerbose(v bool) {
	f.verbose = v
}

func (f *PrettyFormatter) Format(r slog.Record, group string, attrs []slog.Attr) []byte {
	var b strings.Builder

	b.WriteString(r.Time.Format("15:04:05"))
	b.WriteByte(' ')
	b.WriteString(f.levelTag(r.Level))
	b.WriteByte(' ')

	if hasGroup(group) {
		b.WriteString(group)
		b.WriteString(": ")
	}

	b.WriteString(r.Message)

	if f.verbose {
		for _, a := range attrs {
			fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Any())
		}
	}

	b.WriteByte('\n')
	return []byte(b.String())
}

func (f *PrettyFormatter) levelTag(level slog.Level) string {
	label, c := levelLabel(level)
	tag := fmt.Sprintf("[%-5s]", label)
	if !f.color {
		return tag
	}
	return c.Sprint(tag)
}

func levelLabel(level slog.Level) (string, *color.Color) {
	switch {
	case level >= slog.LevelError:
		return "ERROR", color.New(color.FgRed, color.Bold)
	case level >= slog.LevelWarn:
		return "WARN", color.New(color.FgYellow)
	case level >= slog.LevelInfo:
		return "INFO", color.New(color.FgCyan)
	default:
		return "DEBUG", color.New(color.FgMagenta)
	}
}
