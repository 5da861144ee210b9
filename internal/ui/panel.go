package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderPanel draws content in a rounded box with title set into the top
// border.
func RenderPanel(title, content string, border lipgloss.Style) string {
	edges := lipgloss.RoundedBorder()

	lines := strings.Split(lipgloss.NewStyle().Padding(0, 1).Render(content), "\n")
	width := 0
	for _, line := range lines {
		width = max(width, lipgloss.Width(line))
	}

	heading := " " + border.Bold(true).Render(title) + " "
	fill := max(width-lipgloss.Width(heading)-1, 1)
	width = max(width, lipgloss.Width(heading)+1+fill)

	var sb strings.Builder
	sb.WriteString(border.Render(edges.TopLeft+edges.Top) + heading +
		border.Render(strings.Repeat(edges.Top, fill)+edges.TopRight) + "\n")
	for _, line := range lines {
		pad := strings.Repeat(" ", width-lipgloss.Width(line))
		sb.WriteString(border.Render(edges.Left) + line + pad + border.Render(edges.Right) + "\n")
	}
	sb.WriteString(border.Render(edges.BottomLeft+strings.Repeat(edges.Bottom, width)+edges.BottomRight) + "\n")
	return sb.String()
}

// DetailSection is a group of rows rendered by RenderDetails.
type DetailSection struct {
	Header string
	Rows   []DetailRow
}

type DetailRow struct {
	Label string
	Value string
}

// RenderDetails renders aligned label/value rows. Sections with a header are
// separated by a blank line.
func RenderDetails(sections []DetailSection) string {
	var sb strings.Builder
	for i, section := range sections {
		if len(section.Rows) == 0 {
			continue
		}
		if section.Header != "" {
			if i > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(SectionStyle.Render(section.Header))
			sb.WriteByte('\n')
		}
		for _, row := range section.Rows {
			sb.WriteString(LabelStyle.Render(row.Label))
			sb.WriteString(row.Value)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
