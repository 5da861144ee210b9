package config

import (
	"errors"
	"fmt"

	"github.com/livyctl/livyctl/internal/ui"
	"github.com/livyctl/livyctl/pkg/config"
	"github.com/spf13/cobra"
)

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <section.key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in the config file

List values are comma separated. Durations use Go syntax, e.g. 400ms or 1m.

Examples:
  livy config set root.api_url http://livy.example.com:8998
  livy config set root.timezone Asia/Taipei
  livy config set logs.hide_loggers YARN,stderr
  livy config set submit.pre_submit upload_s3`,
		Args: cobra.ExactArgs(2),
		RunE: runSet,
	}
}

func runSet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	value, err := config.Set(args[0], args[1])
	if err != nil {
		var keyErr *config.KeyError
		if errors.As(err, &keyErr) {
			printValidKeys(cmd)
		}
		return ui.NewValidationError(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s = %s\n", args[0], formatValue(value))
	return nil
}

func printValidKeys(cmd *cobra.Command) {
	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "Valid configuration keys:\n")
	for _, key := range config.Keys() {
		fmt.Fprintf(w, "  %s (%s) - %s\n", key.Name, key.Type, key.Description)
	}
	fmt.Fprintln(w)
}
