package config

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/livyctl/livyctl/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open config file in editor",
		Long: `Open the configuration file in your default editor.

The editor is determined by (in order):
  1. $EDITOR environment variable
  2. $VISUAL environment variable
  3. Falls back to 'vi' on Unix, 'notepad' on Windows

Example:
  livy config edit
  EDITOR=nano livy config edit`,
		Args: cobra.NoArgs,
		RunE: runEdit,
	}
}

func runEdit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	// Get config file path
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		return ui.NewConfigurationError(fmt.Errorf("config file not found"))
	}

	// Determine editor
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		// Default editor based on OS
		if runtime.GOOS == "windows" {
			editor = "notepad"
		} else {
			editor = "vi"
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Opening %s with %s...\n", configFile, editor)

	// Execute editor
	editorCmd := exec.CommandContext(cmd.Context(), editor, configFile) //nolint:gosec // Editor from user's environment variable
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return ui.NewInternalError(fmt.Errorf("failed to open editor: %w", err))
	}

	// Fail early on a config the next command could not read
	if err := viper.ReadInConfig(); err != nil {
		return ui.NewConfigurationError(fmt.Errorf("config file is no longer valid: %w", err))
	}
	return nil
}
