package main

import "github.com/charmbracelet/lipgloss"

// Semantic styles for terminal output. Adaptive colors adjust to light
// and dark terminal themes.
var (
	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "42"})

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "203"})

	conflictStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "130", Dark: "214"})

	pathStyle = lipgloss.NewStyle().Bold(true)
)
