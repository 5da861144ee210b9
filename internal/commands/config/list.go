package config

import (
	"fmt"
	"strings"

	"github.com/livyctl/livyctl/internal/ui"
	"github.com/livyctl/livyctl/pkg/config"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration",
		Long: `List every configuration key with its effective value

Example:
  livy config list`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	w := cmd.OutOrStdout()
	section := ""
	for _, key := range config.Keys() {
		value, err := config.Get(key.Name)
		if err != nil {
			return ui.NewInternalError(err)
		}

		prefix := key.Name[:strings.LastIndex(key.Name, ".")]
		if prefix != section {
			if section != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, ui.BoldStyle.Render("["+prefix+"]"))
			section = prefix
		}

		display := "(unset)"
		if value != nil {
			display = formatValue(value)
		}
		fmt.Fprintf(w, "%s = %s\n", key.Name, display)
	}

	return nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case []string:
		return strings.Join(x, ",")
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}
