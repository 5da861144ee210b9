package ui

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// DisplayConfigContextKey is the key used to store DisplayConfig in context
type DisplayConfigContextKey struct{}

// GetDisplayConfigContextKey returns the key used to store DisplayConfig in context
func GetDisplayConfigContextKey() DisplayConfigContextKey {
	return DisplayConfigContextKey{}
}

// DisplayConfig contains display-related configuration
type DisplayConfig struct {
	NoColor bool
	// StdinIsTTY and StderrIsTTY gate prompts and the progress bar.
	StdinIsTTY  bool
	StderrIsTTY bool
}

// CanPrompt reports whether an interactive prompt can be shown.
func (d DisplayConfig) CanPrompt() bool {
	return d.StdinIsTTY && d.StderrIsTTY
}

// ColorEnabled reports whether console output should be colored.
func (d DisplayConfig) ColorEnabled() bool {
	return !d.NoColor && d.StderrIsTTY
}

// NewDisplayConfig extracts display options from persistent flags and TTY detection
func NewDisplayConfig(cmd *cobra.Command) DisplayConfig {
	noColor, _ := cmd.Flags().GetBool("no-color")
	_, noColorEnv := os.LookupEnv("NO_COLOR")

	opts := DisplayConfig{
		NoColor:     noColor || noColorEnv,
		StdinIsTTY:  isatty.IsTerminal(os.Stdin.Fd()),
		StderrIsTTY: isatty.IsTerminal(os.Stderr.Fd()),
	}

	slog.Debug("Display options determined",
		"command", cmd.Name(),
		"no-color", opts.NoColor,
		"stdin-is-tty", opts.StdinIsTTY,
		"stderr-is-tty", opts.StderrIsTTY,
	)

	return opts
}

// GetDisplayConfigFromContext retrieves DisplayConfig from the command context
func GetDisplayConfigFromContext(cmd *cobra.Command) (DisplayConfig, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return DisplayConfig{}, fmt.Errorf("command context is nil")
	}

	opts, ok := ctx.Value(GetDisplayConfigContextKey()).(DisplayConfig)
	if !ok {
		return DisplayConfig{}, fmt.Errorf("display options not found in context")
	}

	return opts, nil
}
