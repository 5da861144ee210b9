package logreader

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

const (
	sectionStdout = "stdout"
	sectionStderr = "stderr"
	sectionYARN   = "YARN Diagnostics"

	// log4j pattern yy/MM/dd HH:mm:ss
	defaultTimeLayout = "06/01/02 15:04:05"
	yarnTimeLayout    = "Mon Jan 02 15:04:05 -0700 2006"
)

var (
	sectionPattern = regexp.MustCompile(`(?m)^(stdout|stderr|YARN Diagnostics): `)

	defaultPattern = regexp.MustCompile(`(?m)^(\d{2}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}) ([A-Z]+) (.+?):(.*(?:\n\t.+)*)$`)

	yarnWarningPattern = regexp.MustCompile(`(?m)^\[((?:Sun|Mon|Tue|Wed|Thu|Fri|Sat) ` +
		`(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec) ` +
		`\d{2} \d{2}:\d{2}:\d{2} [+-]\d{4} \d{4})\] (.+)`)

	pythonTracebackPattern = regexp.MustCompile(`(?m)^Traceback \(most recent call last\):(\n[\s\S]+?^[a-zA-Z].+)`)

	pythonWarningPattern = regexp.MustCompile(`(?m)^((?:[A-Z]:\\|\.|/).+\.py):(\d+): (\w+): ([\s\S]+?)\n  .+`)

	pythonArgErrorPattern = regexp.MustCompile(`(?m)^(usage: .+ \[-h\].+(?:\n .+)*)\n.+: error: (.+)`)
)

var levelByName = map[string]slog.Level{
	"DEBUG":    LevelDebug,
	"INFO":     LevelInfo,
	"WARN":     LevelWarning,
	"WARNING":  LevelWarning,
	"ERROR":    LevelError,
	"FATAL":    LevelCritical,
	"CRITICAL": LevelCritical,
}

// sectionLevel is the level of unparsed text in each section.
var sectionLevel = map[string]slog.Level{
	sectionStdout: LevelInfo,
	sectionStderr: LevelError,
	sectionYARN:   LevelWarning,
}

func builtinEntries() []entry {
	return []entry{
		{name: "section", pattern: sectionPattern, kind: kindSection},
		{name: "default", pattern: defaultPattern, parse: parseDefault},
		{name: "yarn-warning", pattern: yarnWarningPattern, parse: parseYARNWarning},
		{name: "python-traceback", pattern: pythonTracebackPattern, parse: parsePythonTraceback},
		{name: "python-warning", pattern: pythonWarningPattern, parse: parsePythonWarning},
		{name: "python-argerror", pattern: pythonArgErrorPattern, parse: parsePythonArgError},
	}
}

// parseDefault handles the log4j lines Spark writes by default:
//
//	21/05/01 12:00:00 INFO SparkContext: Running Spark version 3.1.1
func parseDefault(m Match) (Record, error) {
	created, err := time.Parse(defaultTimeLayout, m.Group(1))
	if err != nil {
		return Record{}, fmt.Errorf("parse timestamp %q: %w", m.Group(1), err)
	}

	level, ok := levelByName[m.Group(2)]
	if !ok {
		level = LevelCritical
	}

	return Record{
		Created: created,
		Level:   level,
		Name:    m.Group(3),
		Message: strings.ReplaceAll(strings.TrimLeft(m.Group(4), " \t\r\n\v\f"), "\n\t", "\n"),
	}, nil
}

func parseYARNWarning(m Match) (Record, error) {
	created, err := time.Parse(yarnTimeLayout, m.Group(1))
	if err != nil {
		return Record{}, fmt.Errorf("parse timestamp %q: %w", m.Group(1), err)
	}
	return Record{
		Created: created,
		Zoned:   true,
		Level:   LevelWarning,
		Name:    "YARN",
		Message: m.Group(2),
	}, nil
}

// parsePythonTraceback leaves the name empty so the record lands on whichever
// section printed it.
func parsePythonTraceback(m Match) (Record, error) {
	return Record{
		Level:   LevelError,
		Message: m.Group(1),
	}, nil
}

func parsePythonWarning(m Match) (Record, error) {
	return Record{
		Level:   LevelWarning,
		Name:    "stdout.warning." + m.Group(3),
		Message: fmt.Sprintf("%s (from line %s @%s)", m.Group(4), m.Group(2), m.Group(1)),
	}, nil
}

func parsePythonArgError(m Match) (Record, error) {
	return Record{
		Level:   LevelError,
		Name:    "stdout.argerror",
		Message: m.Group(2) + "\n" + m.Group(1),
	}, nil
}
