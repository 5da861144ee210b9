package ui

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// TitleState turns a Livy state such as "shutting_down" into "Shutting Down".
func TitleState(state string) string {
	return titleCaser.String(strings.ReplaceAll(strings.ToLower(state), "_", " "))
}

// ColorizeState applies color styling to a batch state
func ColorizeState(state string) string {
	display := TitleState(state)

	switch strings.ToLower(state) {
	case "success":
		return GreenStyle.Render(display)
	case "starting", "running", "recovering":
		return CyanStyle.Render(display)
	case "not_started", "idle", "busy":
		return PendingStyle.Render(display)
	case "shutting_down":
		return YellowStyle.Render(display)
	case "error", "dead", "killed":
		return RedStyle.Render(display)
	default:
		return BoldStyle.Render(display)
	}
}

// FormatError formats an error message with styling
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	return ErrorStyle.Render(fmt.Sprintf("✗ Error: %s", err.Error())) + "\n"
}
