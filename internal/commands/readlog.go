package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/livyctl/livyctl/internal/api"
	"github.com/livyctl/livyctl/internal/logreader"
	"github.com/livyctl/livyctl/internal/ui"
	"github.com/livyctl/livyctl/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type readLogOptions struct {
	BatchID     int
	KeepWatch   bool
	Interval    time.Duration
	MetricsFile string
}

// NewReadLogCmd creates the read-log command
func NewReadLogCmd() *cobra.Command {
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "read-log N",
		Short: "Read the log of a batch",
		Long: `Read the log of a Livy batch and print it as structured records.

By default the command keeps watching the batch until it is finished.

Example:
  livy read-log 42
  livy read-log 42 --no-keep-watch
  livy read-log 42 --hide-logger YARN --tz Asia/Taipei`,
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

			opts := readLogOptions{
				BatchID:     batchID,
				KeepWatch:   cfg.ReadLog.KeepWatch,
				Interval:    cfg.ReadLog.Interval,
				MetricsFile: metricsFile,
			}
			if on, _ := cmd.Flags().GetBool("keep-watch"); on {
				opts.KeepWatch = true
			}
			if off, _ := cmd.Flags().GetBool("no-keep-watch"); off {
				opts.KeepWatch = false
			}

			return runReadLog(cmd.Context(), client, cfg, opts)
		},
	}

	cmd.Flags().Bool("keep-watch", false, "Keep watching this batch until it is finished")
	cmd.Flags().Bool("no-keep-watch", false, "Only read log once")
	cmd.MarkFlagsMutuallyExclusive("keep-watch", "no-keep-watch")
	cmd.Flags().StringVar(&metricsFile, "metrics-textfile", "", "Write reader metrics to PATH in Prometheus text format")

	return cmd
}

func runReadLog(ctx context.Context, client api.Client, cfg *config.Config, opts readLogOptions) error {
	console := commandLogger("livy.read_log")
	console.Info("Connecting to server", "url", cfg.Root.APIURL)

	finished, err := client.IsBatchFinished(ctx, opts.BatchID)
	if err != nil {
		return requestFailed(ctx, console, "Failed to check batch status", err)
	}

	console.Info("Reading logs", "batch_id", opts.BatchID)
	if finished && opts.KeepWatch {
		opts.KeepWatch = false
		console.Warn("Batch is already finished, disable keep-watch behavior", "batch_id", opts.BatchID)
	}

	reg := prometheus.NewRegistry()
	defer writeMetrics(console, opts.MetricsFile, reg)

	if err := watchLog(ctx, client, cfg, opts.BatchID, opts.KeepWatch, opts.Interval, reg); err != nil {
		return err
	}

	if opts.KeepWatch {
		return reportFinalState(ctx, client, console, opts.BatchID)
	}
	return nil
}

// watchLog reads the log of a batch once, or until the batch is finished.
func watchLog(ctx context.Context, client api.Client, cfg *config.Config, batchID int, keepWatch bool, interval time.Duration, reg prometheus.Registerer) error {
	console := commandLogger("livy.read_log")

	loc, err := cfg.Location()
	if err != nil {
		return ui.NewConfigurationError(err)
	}

	reader, err := logreader.NewBatchLogReader(logreader.BatchLogReaderConfig{
		Client:     client,
		BatchID:    batchID,
		Location:   loc,
		Registerer: reg,
	})
	if err != nil {
		return ui.NewInternalError(err)
	}

	if keepWatch {
		err = reader.ReadUntilFinish(ctx, true, interval)
	} else {
		err = reader.Read(ctx)
	}
	var argErr *logreader.ArgumentError
	if errors.As(err, &argErr) {
		return ui.NewValidationError(argErr)
	}
	if err != nil {
		return requestFailed(ctx, console, "Error occurs during read log", err)
	}
	return nil
}

func reportFinalState(ctx context.Context, client api.Client, console *slog.Logger, batchID int) error {
	state, err := client.GetBatchState(ctx, batchID)
	if err != nil {
		return requestFailed(ctx, console, "Failed to get batch state", err)
	}

	level := slog.LevelInfo
	if state != api.StateSuccess {
		level = slog.LevelWarn
	}
	console.Log(ctx, level, "Batch finished", "batch_id", batchID, "state", state)
	return nil
}
