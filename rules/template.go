package rules

import (
	"fmt"

	"imagedetective/imageprocessor"
	"imagedetective/types"
)

const matchScoreEvidence = "Match score %.2f"

// TemplateRule matches the grayscale candidate inside the grayscale target,
// once scaled by their area ratio and once at fixed sizes
type TemplateRule struct {
	scale
}

func (r *TemplateRule) Name() string { return "Template" }

func (r *TemplateRule) Zero() types.RuleResult { return zero(matchScoreEvidence) }

func (r *TemplateRule) Evaluate(in Input) types.RuleResult {
	if !hasPixels(in.TargetImage) || !hasPixels(in.CandidateImage) {
		return r.Zero()
	}

	sim := clampUnit(imageprocessor.ScaleRobustSimilarity(in.TargetImage.Gray, in.CandidateImage.Gray))
	return r.fromSimilarity(sim, fmt.Sprintf(matchScoreEvidence, sim))
}
