package logrium

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/muesli/termenv"
)

const clearLine = "\r\x1b[2K"

var (
	addTaskSetPattern    = regexp.MustCompile(`^Adding task set ([\d.]+) with (\d+) tasks`)
	removeTaskSetPattern = regexp.MustCompile(`^Removed TaskSet ([\d.]+),`)
	finishTaskPattern    = regexp.MustCompile(`^Finished task [\d.]+ in stage ([\d.]+) \(.+?\) in \d+ ms on \S+ \(executor \S+\) \((\d+)/(\d+)\)`)
)

// ProgressHandler turns Spark scheduler records into a progress bar drawn
// below the log output. Records are passed on to the wrapped handler.
type ProgressHandler struct {
	next  slog.Handler
	state *progressState
}

type progressState struct {
	mu  sync.Mutex
	out io.Writer
	bar progress.Model

	latest stageID
	active bool
	done   int
	total  int
	drawn  bool
}

// stageID is a Spark task set id such as "3.0": stage 3, attempt 0.
type stageID struct {
	stage, attempt int
}

func parseStageID(s string) (stageID, bool) {
	major, minor, _ := strings.Cut(s, ".")
	stage, err := strconv.Atoi(major)
	if err != nil {
		return stageID{}, false
	}
	var attempt int
	if minor != "" {
		if attempt, err = strconv.Atoi(minor); err != nil {
			return stageID{}, false
		}
	}
	return stageID{stage: stage, attempt: attempt}, true
}

func (s stageID) less(o stageID) bool {
	if s.stage != o.stage {
		return s.stage < o.stage
	}
	return s.attempt < o.attempt
}

func (s stageID) String() string {
	return fmt.Sprintf("%d.%d", s.stage, s.attempt)
}

// NewProgressHandler wraps next. The bar is written to out, which should be
// the terminal next writes to.
func NewProgressHandler(next slog.Handler, out io.Writer, profile termenv.Profile) *ProgressHandler {
	bar := progress.New(
		progress.WithSolidFill("#EB3A6F"),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
		progress.WithColorProfile(profile),
	)
	return &ProgressHandler{
		next: next,
		state: &progressState{
			out:    out,
			bar:    bar,
			latest: stageID{stage: -1},
		},
	}
}

func (h *ProgressHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ProgressHandler) Handle(ctx context.Context, r slog.Record) error {
	s := h.state
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observe(recordLogger(r), r.Message)

	if s.drawn {
		_, _ = io.WriteString(s.out, clearLine)
		s.drawn = false
	}
	err := h.next.Handle(ctx, r)
	s.draw()
	return err
}

func (h *ProgressHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ProgressHandler{next: h.next.WithAttrs(attrs), state: h.state}
}

func (h *ProgressHandler) WithGroup(name string) slog.Handler {
	return &ProgressHandler{next: h.next.WithGroup(name), state: h.state}
}

// Close finishes the bar line so later output starts on a fresh line.
func (h *ProgressHandler) Close() {
	s := h.state
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn {
		_, _ = io.WriteString(s.out, "\n")
		s.drawn = false
	}
	s.active = false
}

func (s *progressState) observe(logger, msg string) {
	switch {
	case strings.HasSuffix(logger, "YarnScheduler"):
		if m := addTaskSetPattern.FindStringSubmatch(msg); m != nil {
			total, _ := strconv.Atoi(m[2])
			s.set(m[1], 0, total)
		} else if m := removeTaskSetPattern.FindStringSubmatch(msg); m != nil {
			s.finish(m[1])
		}
	case strings.HasSuffix(logger, "TaskSetManager"):
		if m := finishTaskPattern.FindStringSubmatch(msg); m != nil {
			done, _ := strconv.Atoi(m[2])
			total, _ := strconv.Atoi(m[3])
			s.set(m[1], done, total)
		}
	}
}

func (s *progressState) set(raw string, done, total int) {
	id, ok := parseStageID(raw)
	if !ok || id.less(s.latest) {
		return
	}

	if id != s.latest || !s.active {
		if s.active {
			s.printFinal()
		}
		s.latest = id
		s.active = true
		s.done = 0
	}
	s.total = total
	s.done = max(s.done, done)
}

func (s *progressState) finish(raw string) {
	id, ok := parseStageID(raw)
	if !ok || !s.active || id != s.latest {
		return
	}
	s.printFinal()
	s.active = false
}

// printFinal leaves the finished bar on screen.
func (s *progressState) printFinal() {
	if s.drawn {
		_, _ = io.WriteString(s.out, clearLine)
	}
	_, _ = io.WriteString(s.out, s.render()+"\n")
	s.drawn = false
}

func (s *progressState) draw() {
	if !s.active {
		return
	}
	_, _ = io.WriteString(s.out, s.render())
	s.drawn = true
}

func (s *progressState) render() string {
	var pct float64
	if s.total > 0 {
		pct = float64(s.done) / float64(s.total)
	}
	return fmt.Sprintf("Stage %s %s %d/%d", s.latest, s.bar.ViewAs(pct), s.done, s.total)
}

func recordLogger(r slog.Record) string {
	logger := DefaultLogger
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == LoggerKey {
			logger = a.Value.String()
			return false
		}
		return true
	})
	return logger
}
