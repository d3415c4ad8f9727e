package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// DisableColor makes every style render plain text
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ColorDim makes text dim/gray
func ColorDim(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Render(text)
}

// ColorBranchName colors a branch name, highlighting the current branch
func ColorBranchName(branchName string, isCurrent bool) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	if isCurrent {
		style = style.Bold(true).Foreground(lipgloss.Color("2"))
	}
	return style.Render(branchName)
}
