package rules

import (
	"fmt"

	"imagedetective/imageprocessor"
	"imagedetective/types"
)

const correlationEvidence = "Correlation %.2f"

// ColorRule compares hue/saturation distributions. A target quadrant may
// stand in for the whole target so crops still correlate.
type ColorRule struct {
	scale
}

func (r *ColorRule) Name() string { return "Histogram" }

func (r *ColorRule) Zero() types.RuleResult { return zero(correlationEvidence) }

func (r *ColorRule) Evaluate(in Input) types.RuleResult {
	if !hasPixels(in.TargetImage) || !hasPixels(in.CandidateImage) {
		return r.Zero()
	}

	_, best := imageprocessor.ColorSimilarity(in.TargetImage.Color, in.CandidateImage.Color)
	best = clampUnit(best)
	return r.fromSimilarity(best, fmt.Sprintf(correlationEvidence, best))
}

func hasPixels(img *imageprocessor.Image) bool {
	return img != nil && !img.Color.Empty() && !img.Gray.Empty()
}
