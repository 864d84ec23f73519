package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/adriangreen/fddplan/internal/config"
)

// Styles holds the lipgloss styles used for command output.
type Styles struct {
	Title     lipgloss.Style
	Highlight lipgloss.Style
	Done      lipgloss.Style
	Late      lipgloss.Style
	Muted     lipgloss.Style
	Warning   lipgloss.Style
}

// NewStyles builds the styles from the theme colors.
func NewStyles(theme config.ThemeConfig) *Styles {
	return &Styles{
		Title:     lipgloss.NewStyle().Bold(true),
		Highlight: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.HighlightColor)),
		Done:      lipgloss.NewStyle().Foreground(lipgloss.Color(theme.DoneColor)),
		Late:      lipgloss.NewStyle().Foreground(lipgloss.Color(theme.LateColor)),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color(theme.MutedColor)),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.LateColor)).Italic(true),
	}
}
