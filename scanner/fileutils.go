package scanner

import (
	"imagedetective/imageprocessor"
	"imagedetective/logging"
)

// CollectCandidates lists the allow-listed images of every folder. Files are
// sorted within a folder and folders keep the given order.
func CollectCandidates(folders []string, extensions []string) ([]string, FileStats, error) {
	filter := imageprocessor.NewExtensionFilter(extensions)
	stats := FileStats{folders: len(folders)}

	var paths []string
	for _, folder := range folders {
		files, err := imageprocessor.ListImageFiles(folder, filter)
		if err != nil {
			return nil, stats, logging.NewOperationError("collect candidates", folder, err)
		}
		paths = append(paths, files...)
	}

	stats.totalFiles = len(paths)
	return paths, stats, nil
}
