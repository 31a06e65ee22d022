package rules

import (
	"fmt"

	"imagedetective/imageprocessor"
	"imagedetective/types"
)

const edgeScoreEvidence = "Edge score %.2f"

// EdgeRule runs the template matcher on Canny edge maps computed at full
// resolution. Blank edge maps score zero.
type EdgeRule struct {
	scale
}

func (r *EdgeRule) Name() string { return "Edge Detection" }

func (r *EdgeRule) Zero() types.RuleResult { return zero(edgeScoreEvidence) }

func (r *EdgeRule) Evaluate(in Input) types.RuleResult {
	if !hasPixels(in.TargetImage) || !hasPixels(in.CandidateImage) {
		return r.Zero()
	}

	targetEdges := in.TargetImage.Edges()
	candidateEdges := in.CandidateImage.Edges()
	if !imageprocessor.HasEdges(targetEdges) || !imageprocessor.HasEdges(candidateEdges) {
		return r.Zero()
	}

	sim := clampUnit(imageprocessor.ScaleRobustSimilarity(targetEdges, candidateEdges))
	return r.fromSimilarity(sim, fmt.Sprintf(edgeScoreEvidence, sim))
}
