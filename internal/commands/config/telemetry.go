package config

import (
	"fmt"

	"github.com/livyctl/livyctl/internal/ui"
	"github.com/livyctl/livyctl/pkg/config"
	"github.com/spf13/cobra"
)

// newTelemetryCmd creates the telemetry command
func newTelemetryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telemetry",
		Short: "Manage telemetry settings",
		Long:  `Manage crash reporting for the livy CLI.`,
	}

	cmd.AddCommand(newTelemetryToggleCmd("disable", false))
	cmd.AddCommand(newTelemetryToggleCmd("enable", true))
	cmd.AddCommand(newTelemetryStatusCmd())

	return cmd
}

func newTelemetryToggleCmd(use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("%s crash reporting", ui.TitleState(use)),
		Long: fmt.Sprintf(`%s crash reporting for the livy CLI.

Reports contain the error message, the command name and system metadata.
Telemetry can also be turned off for a single run with:
  export %s=true`, ui.TitleState(use), config.EnvTelemetryDisabled),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			if _, err := config.Set("root.telemetry", fmt.Sprint(enabled)); err != nil {
				return ui.NewFileSystemError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Telemetry %sd\n", use)
			return nil
		},
	}
}

// newTelemetryStatusCmd creates the telemetry status command
func newTelemetryStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current telemetry status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.GetConfigFromContext(cmd)
			if err != nil {
				if cfg, err = config.Load(); err != nil {
					return ui.NewConfigurationError(fmt.Errorf("failed to load config: %w", err))
				}
			}

			status := "disabled"
			if cfg.IsTelemetryEnabled() {
				status = "enabled"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Telemetry: %s\n", status)
			return nil
		},
	}
}
