package bugsnag

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/livyctl/livyctl/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestIsUserCancellation(t *testing.T) {
	tcs := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "context canceled", err: fmt.Errorf("read log: %w", context.Canceled), want: true},
		{name: "keyboard interrupt", err: errors.New("Keyboard interrupt"), want: true},
		{name: "other error", err: errors.New("request error: code 500"), want: false},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsUserCancellation(tc.err))
		})
	}
}

func TestServerHost(t *testing.T) {
	assert.Equal(t, "livy.example.com:8998", serverHost("https://user:pw@livy.example.com:8998/gateway"))
	assert.Equal(t, "", serverHost("::"))
}

func TestInitialize_Disabled(t *testing.T) {
	off := false
	tcs := []struct {
		name   string
		apiKey string
		cfg    *config.Config
	}{
		{name: "no api key", apiKey: "", cfg: &config.Config{}},
		{name: "no config", apiKey: "key", cfg: nil},
		{name: "telemetry off", apiKey: "key", cfg: &config.Config{Root: config.RootConfig{TelemetryEnabled: &off}}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("BUGSNAG_API_KEY", "")
			orig := BugsnagAPIKey
			BugsnagAPIKey = tc.apiKey
			t.Cleanup(func() { BugsnagAPIKey = orig })

			Initialize(tc.cfg)
			assert.False(t, IsEnabled())

			// Reporting while disabled is a no-op
			NotifyError(context.Background(), errors.New("boom"))
		})
	}
}
