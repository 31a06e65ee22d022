package imageprocessor

import (
	"image"

	"gocv.io/x/gocv"
)

// Edge detector parameters
const (
	BlurKernel         = 5
	CannyLowThreshold  = 50
	CannyHighThreshold = 150
)

// EdgeMap blurs a grayscale image and returns its binary Canny edge map.
// The caller owns the returned Mat.
func EdgeMap(gray gocv.Mat) gocv.Mat {
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: BlurKernel, Y: BlurKernel}, 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	gocv.Canny(blurred, &edges, CannyLowThreshold, CannyHighThreshold)
	return edges
}

// HasEdges reports whether an edge map contains at least one edge pixel
func HasEdges(edges gocv.Mat) bool {
	if edges.Empty() {
		return false
	}
	return gocv.CountNonZero(edges) > 0
}
