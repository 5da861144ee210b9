package logrium

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the global logger built by Setup.
type Options struct {
	// Level is the minimal console level.
	Level      slog.Level
	TimeFormat string
	NoColor    bool

	HighlightLoggers []string
	HideLoggers      []string

	// WithProgressbar draws Spark task progress on a terminal.
	WithProgressbar bool

	// OutputFile enables the file sink. LogFile is its path; an empty path
	// creates livy-<timestamp>.log in the working directory.
	OutputFile bool
	LogFile    string
	FileLevel  slog.Level

	// Writer receives console output. Defaults to os.Stderr.
	Writer io.Writer
}

// Setup configures the global slog logger with a console sink and, when
// enabled, a rotating file sink. It returns a cleanup func that flushes and
// closes the sinks and the path of the log file (empty without file sink).
//
// Example usage:
//
//	cleanup, logFile, err := logrium.Setup(logrium.Options{Level: slog.LevelInfo})
//	if err != nil {
//	    return err
//	}
//	defer cleanup()
func Setup(opts Options) (func(), string, error) {
	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}
	tty := isTerminal(out)

	renderer := lipgloss.NewRenderer(out)
	profile := renderer.ColorProfile()
	if opts.NoColor || !tty {
		profile = termenv.Ascii
		renderer.SetColorProfile(profile)
	}

	var console slog.Handler = NewConsoleHandler(out, &ConsoleOptions{
		Level:            opts.Level,
		TimeFormat:       opts.TimeFormat,
		HighlightLoggers: opts.HighlightLoggers,
		HideLoggers:      opts.HideLoggers,
		Renderer:         renderer,
	})

	var closers []func()
	if opts.WithProgressbar && tty {
		pb := NewProgressHandler(console, out, profile)
		console = pb
		closers = append(closers, pb.Close)
	}

	handlers := []slog.Handler{console}

	var logFile string
	if opts.OutputFile {
		logFile = opts.LogFile
		if logFile == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, "", fmt.Errorf("failed to resolve working directory: %w", err)
			}
			logFile = filepath.Join(cwd, fmt.Sprintf("livy-%s.log", time.Now().Format("20060102-150405")))
		}

		writer := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
		}
		// Open eagerly so a bad path fails here instead of on the first record.
		if _, err := writer.Write(nil); err != nil {
			return nil, "", fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		closers = append(closers, func() { _ = writer.Close() })
		handlers = append(handlers, NewFileHandler(writer, opts.FileLevel))
	}

	slog.SetDefault(slog.New(newFanoutHandler(handlers...)))

	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}
	return cleanup, logFile, nil
}

// NewFileHandler writes key=value records without colors, with the level
// names used on the console.
func NewFileHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(LevelName(l))
				}
			}
			return a
		},
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Disable configures slog to discard all log output.
func Disable() {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: LevelCritical + 1,
	})
	slog.SetDefault(slog.New(handler))
}

// SetupForTesting points slog at a colorless console handler writing to w.
// The original logger is restored when the test completes.
//
// Example usage:
//
//	func TestMyFunction(t *testing.T) {
//	    var buf bytes.Buffer
//	    logrium.SetupForTesting(t, &buf, slog.LevelDebug)
//
//	    myFunction()
//
//	    assert.Contains(t, buf.String(), "expected log message")
//	}
func SetupForTesting(t *testing.T, w io.Writer, level slog.Level) {
	originalLogger := slog.Default()

	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(termenv.Ascii)
	slog.SetDefault(slog.New(NewConsoleHandler(w, &ConsoleOptions{
		Level:    level,
		Renderer: renderer,
	})))

	t.Cleanup(func() {
		slog.SetDefault(originalLogger)
	})
}
