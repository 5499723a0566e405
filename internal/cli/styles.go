package cli

import "github.com/charmbracelet/lipgloss"

// Output styles for list and search rendering.
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5FAFD7")).
			Bold(true)

	scoreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00D787"))

	impactStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAF00"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C6C6C")).
			Italic(true)
)
