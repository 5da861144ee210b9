package logrium

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const (
	// LoggerKey is the attribute holding the logger name of a record.
	LoggerKey = "logger"

	// DefaultLogger names records that carry no logger attribute.
	DefaultLogger = "livy"

	// DefaultTimeFormat is the layout used when none is configured.
	DefaultTimeFormat = "2006-01-02 15:04:05 -0700"
)

// LevelCritical sits above slog.LevelError for fatal driver output.
const LevelCritical = slog.Level(12)

// LevelName returns the upper-case name used in console and file output.
func LevelName(l slog.Level) string {
	switch {
	case l >= LevelCritical:
		return "CRITICAL"
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARNING"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// ConsoleOptions configures a ConsoleHandler.
type ConsoleOptions struct {
	Level      slog.Leveler
	TimeFormat string

	// HighlightLoggers are rendered in bold; HideLoggers are dropped. A name
	// also matches its children, so "Foo" covers "Foo.bar".
	HighlightLoggers []string
	HideLoggers      []string

	// Renderer controls color output. Defaults to a renderer detecting the
	// capabilities of the writer.
	Renderer *lipgloss.Renderer
}

// ConsoleHandler writes one line per record:
//
//	<time> [<LEVEL>] <logger>: <message> key=value ...
type ConsoleHandler struct {
	opts   ConsoleOptions
	styles consoleStyles

	mu *sync.Mutex
	w  io.Writer

	attrs  []groupedAttr
	groups []string
}

// groupedAttr remembers the groups open when an attribute was bound.
type groupedAttr struct {
	prefix string
	attr   slog.Attr
}

type consoleStyles struct {
	levels    map[string]lipgloss.Style
	time      lipgloss.Style
	highlight lipgloss.Style
}

func newConsoleStyles(r *lipgloss.Renderer) consoleStyles {
	return consoleStyles{
		levels: map[string]lipgloss.Style{
			"DEBUG":    r.NewStyle().Foreground(lipgloss.Color("8")),
			"INFO":     r.NewStyle().Foreground(lipgloss.Color("10")),
			"WARNING":  r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
			"ERROR":    r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			"CRITICAL": r.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9")).Bold(true),
		},
		time:      r.NewStyle().Foreground(lipgloss.Color("246")),
		highlight: r.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
	}
}

// NewConsoleHandler creates a ConsoleHandler writing to w.
func NewConsoleHandler(w io.Writer, opts *ConsoleOptions) *ConsoleHandler {
	h := &ConsoleHandler{mu: &sync.Mutex{}, w: w}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.Level == nil {
		h.opts.Level = slog.LevelInfo
	}
	if h.opts.TimeFormat == "" {
		h.opts.TimeFormat = DefaultTimeFormat
	}
	if h.opts.Renderer == nil {
		h.opts.Renderer = lipgloss.NewRenderer(w)
	}
	h.styles = newConsoleStyles(h.opts.Renderer)
	return h
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	logger := DefaultLogger
	var extra []groupedAttr
	collect := func(ga groupedAttr) {
		if ga.prefix == "" && ga.attr.Key == LoggerKey {
			logger = ga.attr.Value.String()
			return
		}
		extra = append(extra, ga)
	}
	for _, ga := range h.attrs {
		collect(ga)
	}
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		collect(groupedAttr{prefix: prefix, attr: a})
		return true
	})

	if matchLogger(h.opts.HideLoggers, logger) {
		return nil
	}

	var buf bytes.Buffer
	if !r.Time.IsZero() {
		buf.WriteString(h.styles.time.Render(r.Time.Format(h.opts.TimeFormat)))
		buf.WriteByte(' ')
	}

	level := LevelName(r.Level)
	buf.WriteString(h.styles.levels[level].Render("[" + level + "]"))
	buf.WriteByte(' ')

	if matchLogger(h.opts.HighlightLoggers, logger) {
		buf.WriteString(h.styles.highlight.Render(logger))
	} else {
		buf.WriteString(logger)
	}
	buf.WriteString(": ")
	buf.WriteString(r.Message)

	for _, ga := range extra {
		appendAttr(&buf, ga.prefix, ga.attr)
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	prefix := strings.Join(h.groups, ".")
	h2 := *h
	h2.attrs = append([]groupedAttr{}, h.attrs...)
	for _, a := range attrs {
		h2.attrs = append(h2.attrs, groupedAttr{prefix: prefix, attr: a})
	}
	return &h2
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(append([]string{}, h.groups...), name)
	return &h2
}

func appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			appendAttr(buf, key, ga)
		}
		return
	}

	buf.WriteByte(' ')
	buf.WriteString(key)
	buf.WriteByte('=')
	buf.WriteString(a.Value.String())
}

// matchLogger reports whether name is one of names or a child of one.
func matchLogger(names []string, name string) bool {
	for _, n := range names {
		if n == "" {
			continue
		}
		if name == n || strings.HasPrefix(name, n+".") {
			return true
		}
	}
	return false
}
