package imageprocessor

import (
	"math"

	"gocv.io/x/gocv"
)

// Template matching geometry
const (
	// SearchSide is the side of the square canvas the target is resized to
	// in the size-aware attempt
	SearchSide = 500

	// MinTemplateSide bounds the size-aware template from below
	MinTemplateSide = 50

	// MinLinearRatio and MaxLinearRatio clamp sqrt(candidate area / target area)
	MinLinearRatio = 0.2
	MaxLinearRatio = 0.85

	// FixedTemplateSide and FixedSearchSide are the canvases of the
	// fixed-size attempt
	FixedTemplateSide = 200
	FixedSearchSide   = 240
)

// TemplateSide returns the template side of the size-aware attempt for the
// given pixel areas. The template's size relative to the search canvas
// approximates the candidate's area fraction of the target.
func TemplateSide(targetArea, candidateArea int) int {
	areaRatio := float64(candidateArea) / float64(max(targetArea, 1))
	linear := math.Max(MinLinearRatio, math.Min(MaxLinearRatio, math.Sqrt(areaRatio)))
	return max(MinTemplateSide, int(math.Round(SearchSide*linear)))
}

// BestMatch slides templ over search with normalized correlation and returns
// the best local score.
func BestMatch(search, templ gocv.Mat) float64 {
	result := gocv.NewMat()
	defer result.Close()

	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(search, templ, &result, gocv.TmCcoeffNormed, mask)
	if result.Empty() {
		return 0
	}

	_, maxVal, _, _ := gocv.MinMaxLoc(result)
	if math.IsNaN(float64(maxVal)) || math.IsInf(float64(maxVal), 0) {
		return 0
	}
	return float64(maxVal)
}

// SizeAwareSimilarity resizes the target to the search canvas and the
// candidate to a template scaled by the area ratio. It reports false when
// the template would not fit strictly inside the search canvas.
func SizeAwareSimilarity(target, candidate gocv.Mat) (float64, bool) {
	side := TemplateSide(target.Cols()*target.Rows(), candidate.Cols()*candidate.Rows())
	if side >= SearchSide {
		return 0, false
	}

	search := Resize(target, SearchSide)
	defer search.Close()
	templ := Resize(candidate, side)
	defer templ.Close()

	return BestMatch(search, templ), true
}

// FixedSizeSimilarity matches a small fixed-size candidate inside a slightly
// larger fixed-size target
func FixedSizeSimilarity(target, candidate gocv.Mat) float64 {
	search := Resize(target, FixedSearchSide)
	defer search.Close()
	templ := Resize(candidate, FixedTemplateSide)
	defer templ.Close()

	return BestMatch(search, templ)
}

// ScaleRobustSimilarity runs both attempts and returns the larger similarity
// clamped to [0,1]
func ScaleRobustSimilarity(target, candidate gocv.Mat) float64 {
	best := 0.0
	if s, ok := SizeAwareSimilarity(target, candidate); ok {
		best = math.Max(best, s)
	}
	best = math.Max(best, FixedSizeSimilarity(target, candidate))
	return clamp01(best)
}
