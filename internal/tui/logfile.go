package tui

import (
	"os"
	"path/filepath"
)

// GetLogFilePath returns the path to the log file.
// If UPREBASE_LOG_FILE is set, uses that path.
// Otherwise, uses ~/.uprebase/logs/uprebase.log
func GetLogFilePath() string {
	if customPath := os.Getenv("UPREBASE_LOG_FILE"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if we can't get home dir
		return "uprebase.log"
	}

	return filepath.Join(homeDir, ".uprebase", "logs", "uprebase.log")
}
