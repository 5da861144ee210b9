package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/livyctl/livyctl/internal/api"
	"github.com/livyctl/livyctl/internal/ui"
	"github.com/livyctl/livyctl/pkg/config"
	"github.com/livyctl/livyctl/pkg/logrium"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// newClient is replaced in tests.
var newClient = api.NewClient

func clientFromCmd(cmd *cobra.Command) (api.Client, *config.Config, error) {
	cfg, err := config.GetConfigFromContext(cmd)
	if err != nil {
		return nil, nil, ui.NewInternalError(err)
	}
	client, err := newClient(cfg)
	if err != nil {
		return nil, nil, ui.NewConfigurationError(err)
	}
	return client, cfg, nil
}

func parseBatchID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, ui.NewValidationError(fmt.Errorf("invalid batch ID %q, expect a non-negative integer", raw))
	}
	return id, nil
}

// commandLogger returns a logger whose records show name as their source.
func commandLogger(name string) *slog.Logger {
	return slog.Default().With(logrium.LoggerKey, name)
}

// requestFailed logs err and returns it in a form main will not print again.
func requestFailed(ctx context.Context, console *slog.Logger, msg string, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		console.Warn("Keyboard interrupt")
		return ui.NewUserCancelledError()
	}

	var reqErr *api.RequestError
	if errors.As(err, &reqErr) {
		console.Error(msg, "code", reqErr.Code, "reason", reqErr.Reason)
	} else {
		console.Error(msg, "error", err)
	}

	uiErr := ui.NewAPIError(fmt.Errorf("%s: %w", msg, err))
	uiErr.SilentExit = true
	return uiErr
}

// writeMetrics exports the poll counters for the node-exporter textfile collector.
func writeMetrics(console *slog.Logger, path string, reg *prometheus.Registry) {
	if path == "" {
		return
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		console.Warn("Failed to write metrics", "path", path, "error", err)
		return
	}
	console.Debug("Metrics written", "path", path)
}
