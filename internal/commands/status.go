package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/livyctl/livyctl/internal/api"
	"github.com/livyctl/livyctl/internal/ui"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates a status command
func NewStatusCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "status N",
		Short: "Show the state of a batch",
		Long: `Show the state and application information of a Livy batch.

Example:
  livy status 42
  livy status 42 --output json    # Output as JSON for automation`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			// Validate output format
			if outputFormat != "table" && outputFormat != "json" {
				return ui.NewValidationError(fmt.Errorf("invalid output format: %s (supported: table, json)", outputFormat))
			}
			batchID, err := parseBatchID(args[0])
			if err != nil {
				return err
			}
			client, _, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			return runStatus(cmd.Context(), client, cmd.OutOrStdout(), batchID, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json")

	return cmd
}

func runStatus(ctx context.Context, client api.Client, w io.Writer, batchID int, outputFormat string) error {
	batch, err := client.GetBatch(ctx, batchID)
	if err != nil {
		if ctx.Err() != nil {
			return ui.NewUserCancelledError()
		}
		return ui.NewAPIError(fmt.Errorf("failed to get batch %d: %w", batchID, err))
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(batch); err != nil {
			return ui.NewInternalError(fmt.Errorf("failed to encode batch: %w", err))
		}
		return nil
	}

	_, err = io.WriteString(w, renderBatch(batch))
	return err
}

func renderBatch(b *api.Batch) string {
	appID := b.AppID
	if appID == "" {
		appID = "-"
	}
	sections := []ui.DetailSection{{Rows: []ui.DetailRow{
		{Label: "Batch", Value: strconv.Itoa(b.ID)},
		{Label: "App ID", Value: appID},
		{Label: "State", Value: ui.ColorizeState(b.State)},
	}}}

	keys := make([]string, 0, len(b.AppInfo))
	for k := range b.AppInfo {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	info := ui.DetailSection{Header: "Application"}
	for _, k := range keys {
		v := b.AppInfo[k]
		if v == "" {
			continue
		}
		if strings.HasSuffix(strings.ToLower(k), "url") {
			v = ui.URLStyle.Render(v)
		}
		info.Rows = append(info.Rows, ui.DetailRow{Label: k, Value: v})
	}

	return ui.RenderDetails(append(sections, info))
}
