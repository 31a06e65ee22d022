package imageprocessor

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Histogram geometry for the hue/saturation distribution
const (
	HueBins        = 16
	SaturationBins = 8

	// CanonicalSide is the square resolution both images are resized to
	// before their full histograms are computed
	CanonicalSide = 256

	// QuadrantSide is the resolution each target quadrant is resized to
	QuadrantSide = 128
)

// Resize scales src to a side x side square using area interpolation.
// The caller owns the returned Mat.
func Resize(src gocv.Mat, side int) gocv.Mat {
	dst := gocv.NewMat()
	gocv.Resize(src, &dst, image.Point{X: side, Y: side}, 0, 0, gocv.InterpolationArea)
	return dst
}

// HSVHistogram computes the L2-normalized 2-D hue/saturation histogram of a
// BGR image. The caller owns the returned Mat.
func HSVHistogram(bgr gocv.Mat) gocv.Mat {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(bgr, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	defer mask.Close()

	hist := gocv.NewMat()
	gocv.CalcHist(
		[]gocv.Mat{hsv},
		[]int{0, 1},
		mask,
		&hist,
		[]int{HueBins, SaturationBins},
		[]float64{0, 180, 0, 256},
		false,
	)
	gocv.Normalize(hist, &hist, 1, 0, gocv.NormL2)
	return hist
}

// Correlation compares two histograms and clamps the result to [0,1]
func Correlation(a, b gocv.Mat) float64 {
	return clamp01(float64(gocv.CompareHist(a, b, gocv.HistCmpCorrel)))
}

// ColorSimilarity returns the crop-robust color similarity between a target
// and a candidate: the larger of the whole-image correlation and the best
// correlation of a target quadrant against the whole candidate.
func ColorSimilarity(target, candidate gocv.Mat) (full float64, best float64) {
	targetCanon := Resize(target, CanonicalSide)
	defer targetCanon.Close()
	candidateCanon := Resize(candidate, CanonicalSide)
	defer candidateCanon.Close()

	targetHist := HSVHistogram(targetCanon)
	defer targetHist.Close()
	candidateHist := HSVHistogram(candidateCanon)
	defer candidateHist.Close()

	full = Correlation(targetHist, candidateHist)

	bestQuadrant := 0.0
	for _, rect := range quadrants(targetCanon.Cols(), targetCanon.Rows()) {
		region := targetCanon.Region(rect)
		quad := Resize(region, QuadrantSide)
		region.Close()

		quadHist := HSVHistogram(quad)
		quad.Close()

		bestQuadrant = math.Max(bestQuadrant, Correlation(quadHist, candidateHist))
		quadHist.Close()
	}

	return full, math.Max(full, bestQuadrant)
}

// quadrants splits a w x h area into four equal rectangles
func quadrants(w, h int) []image.Rectangle {
	hw, hh := w/2, h/2
	return []image.Rectangle{
		image.Rect(0, 0, hw, hh),
		image.Rect(hw, 0, w, hh),
		image.Rect(0, hh, hw, h),
		image.Rect(hw, hh, w, h),
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
