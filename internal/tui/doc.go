// Package tui provides terminal output for uprebase.
//
// It handles:
//   - Structured logging and status reporting (Splog)
//   - Terminal styling and colors (using lipgloss)
//   - Fetch progress rendering (using bubbles/progress)
package tui
