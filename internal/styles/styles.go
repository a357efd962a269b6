package styles

import "github.com/charmbracelet/lipgloss"

var (
	Log = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"}).
		Italic(true)

	Error = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#8B0000", Dark: "#FF6666"})
)
