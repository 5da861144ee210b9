package ui

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayConfig(t *testing.T) {
	tcs := []struct {
		name       string
		opts       DisplayConfig
		wantPrompt bool
		wantColor  bool
	}{
		{
			name:       "interactive terminal",
			opts:       DisplayConfig{StdinIsTTY: true, StderrIsTTY: true},
			wantPrompt: true,
			wantColor:  true,
		},
		{
			name:       "no color flag",
			opts:       DisplayConfig{NoColor: true, StdinIsTTY: true, StderrIsTTY: true},
			wantPrompt: true,
			wantColor:  false,
		},
		{
			name:       "piped stdin",
			opts:       DisplayConfig{StderrIsTTY: true},
			wantPrompt: false,
			wantColor:  true,
		},
		{
			name: "stderr redirected",
			opts: DisplayConfig{StdinIsTTY: true},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantPrompt, tc.opts.CanPrompt())
			assert.Equal(t, tc.wantColor, tc.opts.ColorEnabled())
		})
	}
}

func TestNewDisplayConfig_NoColor(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Bool("no-color", false, "")
	require.NoError(t, cmd.Flags().Set("no-color", "true"))

	assert.True(t, NewDisplayConfig(cmd).NoColor)
}

func TestNewDisplayConfig_NoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	cmd := &cobra.Command{Use: "test"}

	assert.True(t, NewDisplayConfig(cmd).NoColor)
}

func TestGetDisplayConfigFromContext(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}

	_, err := GetDisplayConfigFromContext(cmd)
	assert.Error(t, err, "nil context")

	cmd.SetContext(context.Background())
	_, err = GetDisplayConfigFromContext(cmd)
	assert.Error(t, err, "missing value")

	want := DisplayConfig{NoColor: true}
	cmd.SetContext(context.WithValue(context.Background(), GetDisplayConfigContextKey(), want))
	got, err := GetDisplayConfigFromContext(cmd)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
