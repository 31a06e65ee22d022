package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GetDefaultDatabasePath returns the default path for the database file
func GetDefaultDatabasePath() string {
	// Get the executable path
	exePath, err := os.Executable()
	if err != nil {
		// Fallback to current directory if executable path can't be determined
		return "detective.db"
	}

	// Return the default database path next to the executable
	return filepath.Join(filepath.Dir(exePath), "detective.db")
}

// WriteLines writes blocks to path separated by a newline, ending with a
// trailing newline. The file is replaced if it exists.
func WriteLines(path string, blocks []string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create directory for %s: %w", path, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	if len(blocks) > 0 {
		w.WriteString(strings.Join(blocks, "\n"))
		w.WriteString("\n")
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return f.Close()
}

// SplitList splits a comma separated list, dropping empty items
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
