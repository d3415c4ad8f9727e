package tui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func TestColors(t *testing.T) {
	defer lipgloss.SetColorProfile(lipgloss.ColorProfile())

	lipgloss.SetColorProfile(termenv.ANSI)
	require.NotEqual(t, "main", ColorBranchName("main", true))
	require.Contains(t, ColorBranchName("main", false), "main")
	require.NotEqual(t, ColorBranchName("main", true), ColorBranchName("main", false))

	DisableColor()
	require.Equal(t, "main", ColorBranchName("main", true))
	require.Equal(t, "abc1234", ColorDim("abc1234"))
}
