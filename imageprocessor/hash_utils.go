package imageprocessor

import (
	"fmt"

	"github.com/corona10/goimagehash"
	"gocv.io/x/gocv"
)

// computeFingerprint computes the difference hash of a BGR image.
// Returns an empty string on any failure.
func computeFingerprint(bgr gocv.Mat) string {
	if bgr.Empty() {
		return ""
	}

	img, err := bgr.ToImage()
	if err != nil {
		return ""
	}

	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return ""
	}
	return hash.ToString()
}

// FingerprintDistance returns the Hamming distance between two fingerprints
// produced by Image.Fingerprint
func FingerprintDistance(a, b string) (int, error) {
	if a == "" || b == "" {
		return 0, fmt.Errorf("missing fingerprint")
	}

	ha, err := goimagehash.ImageHashFromString(a)
	if err != nil {
		return 0, fmt.Errorf("cannot parse fingerprint %q: %w", a, err)
	}
	hb, err := goimagehash.ImageHashFromString(b)
	if err != nil {
		return 0, fmt.Errorf("cannot parse fingerprint %q: %w", b, err)
	}
	return ha.Distance(hb)
}
