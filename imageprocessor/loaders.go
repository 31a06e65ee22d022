package imageprocessor

import (
	"fmt"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// Image holds the decoded pixel grids of one file. Mats are read-only once
// loaded and may be shared between goroutines.
type Image struct {
	Path  string
	Color gocv.Mat // BGR, 3 channels
	Gray  gocv.Mat // 8-bit single channel

	edgesOnce sync.Once
	edges     gocv.Mat

	fingerprintOnce sync.Once
	fingerprint     string
}

// ImageLoader is the interface that all image loaders must implement
type ImageLoader interface {
	// CanLoad checks if the loader can handle the given file
	CanLoad(path string) bool

	// LoadImage loads and returns the image
	LoadImage(path string) (*Image, error)
}

// StandardImageLoader decodes the formats OpenCV reads natively
type StandardImageLoader struct{}

// CanLoad checks that the format is known and the file is accessible
func (l *StandardImageLoader) CanLoad(path string) bool {
	if GetFileFormat(path) == FormatUnknown {
		return false
	}
	return fileExists(path)
}

// LoadImage decodes both the color and the grayscale representation
func (l *StandardImageLoader) LoadImage(path string) (*Image, error) {
	colorMat := gocv.IMRead(path, gocv.IMReadColor)
	if colorMat.Empty() {
		colorMat.Close()
		return nil, newImageLoadError("failed to load image", path)
	}

	grayMat := gocv.IMRead(path, gocv.IMReadGrayScale)
	if grayMat.Empty() {
		colorMat.Close()
		grayMat.Close()
		return nil, newImageLoadError("failed to load grayscale image", path)
	}

	return &Image{Path: path, Color: colorMat, Gray: grayMat}, nil
}

var defaultLoader ImageLoader = &StandardImageLoader{}

// LoadImage loads an image with the standard loader
func LoadImage(path string) (*Image, error) {
	if !defaultLoader.CanLoad(path) {
		return nil, newImageLoadError("no suitable loader found for image", path)
	}
	return defaultLoader.LoadImage(path)
}

// Edges returns the binary edge map of the grayscale image. It is computed
// once per Image.
func (img *Image) Edges() gocv.Mat {
	img.edgesOnce.Do(func() {
		img.edges = EdgeMap(img.Gray)
	})
	return img.edges
}

// Fingerprint returns the hex difference hash of the image, computed once.
// It is empty if hashing failed.
func (img *Image) Fingerprint() string {
	img.fingerprintOnce.Do(func() {
		img.fingerprint = computeFingerprint(img.Color)
	})
	return img.fingerprint
}

// Close releases the Mats held by the image
func (img *Image) Close() {
	if img == nil {
		return
	}
	img.Color.Close()
	img.Gray.Close()
	// Edges must not compute after Close
	img.edgesOnce.Do(func() { img.edges = gocv.NewMat() })
	img.edges.Close()
}

// fileExists checks if a file exists and is accessible
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// newImageLoadError creates a standardized error for image loading failures
func newImageLoadError(message, path string) error {
	return fmt.Errorf("%s: %s", message, path)
}
