package ui

import "github.com/charmbracelet/lipgloss"

var (
	// State colors
	GreenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	RedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	YellowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	CyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	BoldStyle    = lipgloss.NewStyle().Bold(true)
	PendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	URLStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))

	// Key column of `livy status`
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246")).
			Width(16)
	SectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	// Prompt text
	PromptStyle = lipgloss.NewStyle().Bold(true)
	HelpStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)
