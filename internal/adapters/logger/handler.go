package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/rbuild/internal/ui/output"
	"go.trai.ch/rbuild/internal/ui/style"
)

// mark is how a level shows up on the terminal.
type mark struct {
	icon   string
	colour lipgloss.Color
}

func markFor(level slog.Level) mark {
	switch {
	case level >= slog.LevelError:
		return mark{icon: style.Cross, colour: style.Red}
	case level >= slog.LevelWarn:
		return mark{icon: style.Warning, colour: style.Yellow}
	default:
		return mark{colour: style.Muted}
	}
}

// PrettyHandler writes one coloured line per record: an icon for warnings and
// errors, the message, then key=value attributes.
type PrettyHandler struct {
	out    *termenv.Output
	level  slog.Leveler
	attrs  []string
	prefix string
}

// NewPrettyHandler returns a PrettyHandler writing to w, or to stderr when w is nil.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	h := &PrettyHandler{out: output.New(w), level: slog.LevelInfo}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled implements slog.Handler.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	m := markFor(r.Level)

	var line strings.Builder
	if m.icon != "" {
		line.WriteString(m.icon + " ")
	}
	line.WriteString(r.Message)

	attrs := append([]string(nil), h.attrs...)
	r.Attrs(func(attr slog.Attr) bool {
		attrs = h.appendAttr(attrs, attr)
		return true
	})
	if len(attrs) > 0 {
		line.WriteString(" " + strings.Join(attrs, " "))
	}

	styled := h.out.String(line.String()).Foreground(h.out.Color(string(m.colour)))
	_, err := h.out.WriteString(styled.String() + "\n")
	return err
}

// WithAttrs implements slog.Handler.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]string(nil), h.attrs...)
	for _, attr := range attrs {
		next.attrs = h.appendAttr(next.attrs, attr)
	}
	return &next
}

// WithGroup implements slog.Handler. Groups nest as dotted key prefixes.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *PrettyHandler) appendAttr(dst []string, attr slog.Attr) []string {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	return append(dst, h.prefix+attr.Key+"="+attr.Value.String())
}
