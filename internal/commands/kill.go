package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/livyctl/livyctl/internal/api"
	"github.com/livyctl/livyctl/internal/ui"
	"github.com/livyctl/livyctl/pkg/config"
	"github.com/spf13/cobra"
)

// killPollInterval is the delay between two state checks after the kill request.
var killPollInterval = 2 * time.Second

type confirmFunc func(ctx context.Context, prompt string) (bool, error)

type killOptions struct {
	BatchID int
	Yes     bool
	Confirm confirmFunc
}

// NewKillCmd creates the kill command
func NewKillCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "kill N",
		Short: "Kill a running batch",
		Long: `Kill a running Livy batch and wait until it is terminated.

Example:
  livy kill 42
  livy kill 42 --yes    # Skip the confirmation prompt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			batchID, err := parseBatchID(args[0])
			if err != nil {
				return err
			}
			client, cfg, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			display, err := ui.GetDisplayConfigFromContext(cmd)
			if err != nil {
				return ui.NewInternalError(err)
			}

			opts := killOptions{BatchID: batchID, Yes: yes}
			if display.CanPrompt() {
				opts.Confirm = func(ctx context.Context, prompt string) (bool, error) {
					return ui.Confirm(ctx, os.Stdin, cmd.ErrOrStderr(), prompt)
				}
			}
			return runKill(cmd.Context(), client, cfg, opts)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Proceed without showing the prompt")

	return cmd
}

func runKill(ctx context.Context, client api.Client, cfg *config.Config, opts killOptions) error {
	console := commandLogger("livy.kill")
	console.Info("Connecting to server", "url", cfg.Root.APIURL)

	batch, err := client.GetBatch(ctx, opts.BatchID)
	if err != nil {
		return requestFailed(ctx, console, "Failed to get batch information", err)
	}
	console.Info("Batch information",
		"batch_id", batch.ID,
		"state", batch.State,
		"app_id", batch.AppID,
	)

	if batch.IsEnded() {
		console.Warn("Batch is already ended", "state", batch.State)
		return &ui.UIError{
			Err:           fmt.Errorf("batch %d is already ended", opts.BatchID),
			Type:          ui.ErrorTypeValidation,
			SuppressUsage: true,
			SilentExit:    true,
		}
	}

	if !opts.Yes {
		if opts.Confirm == nil {
			return ui.NewValidationError(fmt.Errorf("cannot prompt for confirmation, use --yes to kill batch %d", opts.BatchID))
		}
		ok, err := opts.Confirm(ctx, fmt.Sprintf("Kill batch #%d?", opts.BatchID))
		if err != nil {
			return err
		}
		if !ok {
			console.Warn("User cancellation")
			return &ui.UIError{
				Err:        fmt.Errorf("user cancelled"),
				Type:       ui.ErrorTypeUserCancelled,
				SilentExit: true,
			}
		}
	}

	console.Info("Send kill request")
	if err := client.DeleteBatch(ctx, opts.BatchID); err != nil {
		return requestFailed(ctx, console, "Failed to kill batch", err)
	}

	console.Info("Monitor batch status")
	for {
		finished, err := client.IsBatchFinished(ctx, opts.BatchID)
		if err != nil {
			return requestFailed(ctx, console, "Failed to get batch status", err)
		}
		if finished {
			console.Info("Batch terminated")
			return nil
		}

		console.Info("Batch is still running")
		select {
		case <-ctx.Done():
			console.Warn("Keyboard interrupt")
			return ui.NewUserCancelledError()
		case <-time.After(killPollInterval):
		}
	}
}
