package imageprocessor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FormatType represents a known image format type
type FormatType string

// Known image format constants
const (
	FormatUnknown FormatType = "unknown"
	FormatJPEG    FormatType = "jpeg"
	FormatPNG     FormatType = "png"
	FormatGIF     FormatType = "gif"
	FormatTIFF    FormatType = "tiff"
	FormatBMP     FormatType = "bmp"
	FormatWEBP    FormatType = "webp"
)

// Map of extensions to format types
var formatExtensions = map[string]FormatType{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".gif":  FormatGIF,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".bmp":  FormatBMP,
	".webp": FormatWEBP,
}

// DefaultExtensions is the allow-list used for registration and batch runs
var DefaultExtensions = []string{".jpg", ".jpeg", ".png"}

// GetFileFormat returns the format type based on file extension
func GetFileFormat(path string) FormatType {
	ext := strings.ToLower(filepath.Ext(path))
	format, exists := formatExtensions[ext]
	if !exists {
		return FormatUnknown
	}
	return format
}

// ExtensionFilter matches file names against an extension allow-list
type ExtensionFilter struct {
	allowed map[string]bool
}

// NewExtensionFilter builds a filter from extensions such as ".jpg" or "png".
// An empty list falls back to DefaultExtensions.
func NewExtensionFilter(extensions []string) ExtensionFilter {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	f := ExtensionFilter{allowed: make(map[string]bool, len(extensions))}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.allowed[ext] = true
	}
	return f
}

// Allows reports whether the file name has an allowed extension
func (f ExtensionFilter) Allows(name string) bool {
	return f.allowed[strings.ToLower(filepath.Ext(name))]
}

// ListImageFiles returns the allowed image files directly inside dir, sorted
// lexicographically by file name. Subdirectories are not traversed.
func ListImageFiles(dir string, filter ExtensionFilter) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !filter.Allows(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}
