package cmd

import "github.com/charmbracelet/lipgloss"

// Styles degrade to plain text when stdout is not a terminal.
var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
)
