package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/livyctl/livyctl/internal/batchspec"
	"github.com/livyctl/livyctl/internal/ui"
	"github.com/spf13/cobra"
)

// NewInitCmd creates a new init command
func NewInitCmd() *cobra.Command {
	var dir string
	var force bool

	cmd := &cobra.Command{
		Use:   "init [script]",
		Short: "Create a livy.toml batch definition",
		Long: `Create a livy.toml file describing a batch, so it can be submitted with
'livy submit --spec livy.toml' instead of a long list of flags.

Example:
  livy init
  livy init jobs/etl.py
  livy init jobs/etl.py --dir ./pipelines --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			script := "main.py"
			if len(args) == 1 {
				script = args[0]
			}
			return runInit(cmd.OutOrStdout(), script, dir, force)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to write livy.toml into")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing livy.toml")

	return cmd
}

func runInit(w io.Writer, script, dir string, force bool) error {
	if strings.TrimSpace(script) == "" {
		return ui.NewValidationError(fmt.Errorf("script path cannot be empty"))
	}
	if strings.Contains(script, "\x00") {
		return ui.NewValidationError(fmt.Errorf("script path cannot contain null bytes"))
	}

	specPath := filepath.Join(dir, batchspec.DefaultFile)
	if _, err := os.Stat(specPath); err == nil && !force {
		return ui.NewValidationError(fmt.Errorf("%s already exists, use --force to overwrite it", specPath))
	} else if err != nil && !os.IsNotExist(err) {
		return ui.NewFileSystemError(fmt.Errorf("failed to check %s: %w", specPath, err))
	}

	content, err := batchspec.Template(filepath.ToSlash(script))
	if err != nil {
		return ui.NewInternalError(err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil { //nolint:gosec // Project directory needs standard permissions
		return ui.NewFileSystemError(fmt.Errorf("failed to create directory: %w", err))
	}
	if err := os.WriteFile(specPath, content, 0644); err != nil { //nolint:gosec // Spec file needs to be readable by tools
		return ui.NewFileSystemError(fmt.Errorf("failed to write %s: %w", specPath, err))
	}

	fmt.Fprintf(w, "%s Created %s\n", ui.GreenStyle.Render("✓"), specPath)
	fmt.Fprintf(w, "Run 'livy submit --spec %s' to submit the batch\n", specPath)
	return nil
}
