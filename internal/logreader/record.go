package logreader

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"
)

// Log levels used by parsed records. They line up with slog's levels so records
// can be handed to any slog.Handler without translation.
const (
	LevelDebug    = slog.LevelDebug
	LevelInfo     = slog.LevelInfo
	LevelWarning  = slog.LevelWarn
	LevelError    = slog.LevelError
	LevelCritical = slog.Level(12)
)

// LoggerKey is the attribute key carrying the logger name on emitted slog records.
const LoggerKey = "logger"

// LevelName returns the conventional upper-case name of a record level.
func LevelName(l slog.Level) string {
	switch {
	case l >= LevelCritical:
		return "CRITICAL"
	case l >= LevelError:
		return "ERROR"
	case l >= LevelWarning:
		return "WARNING"
	case l >= LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// Record is one normalized log event extracted from a batch log.
type Record struct {
	// Created is when the log was written. The zero value means unknown; the
	// reader fills it with the time of the last known record.
	Created time.Time

	// Zoned reports whether Created carries its own UTC offset. Wall-clock
	// times without one are interpreted in the reader's location.
	Zoned bool

	Level slog.Level

	// Name is the logger name. Empty falls back to the current section name
	// (stdout, stderr or YARN Diagnostics).
	Name string

	Message string
}

// digest identifies a record across polls. It is computed before timestamp
// inference so the same raw span always yields the same digest.
func (r Record) digest() string {
	var created int64
	if !r.Created.IsZero() {
		created = r.Created.Unix()
	}

	name := sha256.Sum256([]byte(r.Name))
	message := sha256.Sum256([]byte(r.Message))
	sum := sha256.Sum256(fmt.Appendf(nil, "%d--%d--%x--%x", created, int(r.Level), name, message))
	return hex.EncodeToString(sum[:])
}

// inLocation re-interprets the wall clock of t in loc.
func inLocation(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
