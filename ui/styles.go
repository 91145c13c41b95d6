package ui

import (
	"github.com/charmbracelet/lipgloss"
)

type Styles struct {
	Header    lipgloss.Style
	Score     lipgloss.Style
	HighScore lipgloss.Style
	Timer     lipgloss.Style
	Help      lipgloss.Style
	Error     lipgloss.Style

	Choice         lipgloss.Style
	SelectedChoice lipgloss.Style

	ClosedCell lipgloss.Style
	SafeCell   lipgloss.Style
	MineCell   lipgloss.Style
	Cursor     lipgloss.Style

	Win  lipgloss.Style
	Loss lipgloss.Style
}

func DefaultStyles() Styles {
	cell := lipgloss.NewStyle().Padding(0, 1)

	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#006CB0")).Padding(0, 2),
		Score:     lipgloss.NewStyle().Bold(true),
		HighScore: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD700")),
		Timer:     lipgloss.NewStyle().Bold(true),
		Help:      lipgloss.NewStyle().Faint(true),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")),

		Choice:         lipgloss.NewStyle().Padding(0, 1),
		SelectedChoice: lipgloss.NewStyle().Padding(0, 1).Reverse(true),

		ClosedCell: cell.Foreground(lipgloss.Color("#808080")),
		SafeCell:   cell.Foreground(lipgloss.Color("#00FF00")),
		MineCell:   cell.Foreground(lipgloss.Color("#FF0000")),
		Cursor:     lipgloss.NewStyle().Reverse(true),

		Win:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF00")),
		Loss: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000")),
	}
}
