package config

import (
	"fmt"

	"github.com/livyctl/livyctl/internal/ui"
	"github.com/livyctl/livyctl/pkg/config"
	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <section.key>",
		Short: "Get a configuration value",
		Long: `Get the effective value of a configuration key

Examples:
  livy config get root.api_url
  livy config get read_log.interval`,
		Args: cobra.ExactArgs(1),
		RunE: runGet,
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	value, err := config.Get(args[0])
	if err != nil {
		return ui.NewValidationError(err)
	}
	if value == nil {
		value = "(unset)"
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), formatValue(value))
	return err
}
