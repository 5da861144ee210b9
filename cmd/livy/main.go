package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/livyctl/livyctl/internal/commands"
	"github.com/livyctl/livyctl/internal/ui"
	livy_bugsnag "github.com/livyctl/livyctl/pkg/bugsnag"
)

func main() {
	ctx, stop := ui.SignalContext(context.Background())

	// Recover from panics and report them to Bugsnag
	defer livy_bugsnag.NotifyOnPanic(ctx)

	err := commands.Execute(ctx, os.Args[1:])
	stop()
	if err == nil {
		return
	}

	// Commands handle their own error presentation logic
	errMsg := err.Error()
	switch {
	case strings.HasPrefix(errMsg, "unknown command"):
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "Run 'livy --help' for usage.")
	case strings.HasPrefix(errMsg, "unknown flag"):
		// Unknown flag - Cobra already showed usage, don't duplicate
		fmt.Fprintln(os.Stderr, err)
	default:
		uiErr := ui.AsUIError(err)
		if uiErr.Type != ui.ErrorTypeUserCancelled {
			livy_bugsnag.NotifyError(context.Background(), err)
		}
		if !uiErr.SilentExit {
			fmt.Fprint(os.Stderr, ui.FormatError(uiErr))
		}
	}
	os.Exit(1)
}
