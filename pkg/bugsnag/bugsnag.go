// Package bugsnag reports crashes and unexpected errors of the livy CLI.
// Reporting stays off unless an API key is compiled in and telemetry is
// enabled in the config file.
package bugsnag

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/bugsnag/bugsnag-go/v2"
	"github.com/livyctl/livyctl/internal/version"
	"github.com/livyctl/livyctl/pkg/config"
)

// Build-time variables that can be set via ldflags
// Example: go build -ldflags "-X github.com/livyctl/livyctl/pkg/bugsnag.BugsnagAPIKey=your-key"
var (
	// BugsnagAPIKey is the API key for error reporting, injected at compile time.
	BugsnagAPIKey = ""

	// DefaultReleaseStage can be overridden at compile time via ldflags.
	DefaultReleaseStage = "prod"
)

var (
	mu      sync.Mutex
	enabled bool
)

// Initialize configures the client from cfg. It is safe to call more than once;
// the last call decides whether reporting is on.
func Initialize(cfg *config.Config) {
	mu.Lock()
	defer mu.Unlock()

	apiKey := BugsnagAPIKey
	if envKey := os.Getenv("BUGSNAG_API_KEY"); envKey != "" {
		apiKey = envKey
	}
	if apiKey == "" || cfg == nil || !cfg.IsTelemetryEnabled() {
		enabled = false
		return
	}

	releaseStage := os.Getenv("LIVY_ENV")
	if releaseStage == "" {
		releaseStage = DefaultReleaseStage
	}

	bugsnag.Configure(bugsnag.Configuration{
		APIKey:              apiKey,
		ReleaseStage:        releaseStage,
		AppVersion:          version.Version,
		AppType:             "cli",
		ProjectPackages:     []string{"main", "github.com/livyctl/livyctl*"},
		NotifyReleaseStages: []string{"prod", "dev", "local"},
		PanicHandler:        func() {},
		Synchronous:         false,
		AutoCaptureSessions: false,
	})

	server := serverHost(cfg.Root.APIURL)
	bugsnag.OnBeforeNotify(func(event *bugsnag.Event, _ *bugsnag.Configuration) error {
		event.MetaData.Add("system", "os_type", runtime.GOOS)
		event.MetaData.Add("system", "os_arch", runtime.GOARCH)
		event.MetaData.Add("system", "go_version", runtime.Version())
		if server != "" {
			event.MetaData.Add("livy", "server", server)
		}
		return nil
	})

	enabled = true
}

// serverHost keeps only the host of the Livy URL; paths and credentials stay local.
func serverHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}

// IsEnabled returns whether error reporting is active.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// NotifyError reports err unless it is a user cancellation.
func NotifyError(ctx context.Context, err error) {
	if err == nil || !IsEnabled() || IsUserCancellation(err) {
		return
	}
	_ = bugsnag.Notify(err, ctx, bugsnag.SeverityError)
}

// NotifyOnPanic reports a panic and re-panics. Use with defer in main.
func NotifyOnPanic(ctx context.Context) {
	if r := recover(); r != nil {
		var err error
		switch x := r.(type) {
		case error:
			err = fmt.Errorf("panic: %w", x)
		default:
			err = fmt.Errorf("panic: %v", r)
		}
		NotifyError(ctx, err)
		panic(r)
	}
}

// SetCommandContext tags reports with the command that was running.
func SetCommandContext(command string, args []string) {
	if !IsEnabled() {
		return
	}
	bugsnag.OnBeforeNotify(func(event *bugsnag.Event, _ *bugsnag.Configuration) error {
		event.MetaData.Add("command", "name", command)
		if len(args) > 0 {
			event.MetaData.Add("command", "args", strings.Join(args, " "))
		}
		return nil
	})
}

// IsUserCancellation reports whether err comes from Ctrl+C or a declined prompt.
func IsUserCancellation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "Keyboard interrupt") ||
		strings.Contains(errStr, "operation cancelled") ||
		strings.Contains(errStr, "user cancelled")
}
