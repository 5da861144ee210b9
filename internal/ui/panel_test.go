package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPanel(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := RenderPanel("Update available", "line one\nsecond line", lipgloss.NewStyle())
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)

	assert.True(t, strings.HasPrefix(lines[0], "╭─ Update available "))
	assert.True(t, strings.HasSuffix(lines[0], "╮"))
	assert.Equal(t, "│ line one", strings.TrimRight(strings.TrimSuffix(lines[1], "│"), " "))
	assert.True(t, strings.HasPrefix(lines[3], "╰"))

	width := lipgloss.Width(lines[0])
	for _, line := range lines {
		assert.Equal(t, width, lipgloss.Width(line), "line %q", line)
	}
}

func TestRenderPanel_LongTitle(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := RenderPanel("A title wider than the content", "x", lipgloss.NewStyle())
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	width := lipgloss.Width(lines[0])
	for _, line := range lines {
		assert.Equal(t, width, lipgloss.Width(line), "line %q", line)
	}
}

func TestRenderDetails(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := RenderDetails([]DetailSection{
		{Rows: []DetailRow{{Label: "Batch", Value: "42"}}},
		{Header: "Empty"},
		{Header: "Application", Rows: []DetailRow{{Label: "sparkUiUrl", Value: "http://yarn"}}},
	})

	assert.Equal(t, "Batch           42\n\nApplication\nsparkUiUrl      http://yarn\n", out)
}
