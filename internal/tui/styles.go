package tui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Header   lipgloss.Style
	Title    lipgloss.Style
	Label    lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Category lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#3B4B8C")).Padding(0, 1),
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D9CF0")),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0C674")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("#98C379")),
		Category: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#56B6C2")),
	}
}
