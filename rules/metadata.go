package rules

import (
	"fmt"
	"math"

	"imagedetective/types"
)

const sizeRatioEvidence = "Size ratio %.2f"

// MetadataRule compares byte size, pixel dimensions and color mode. Half of
// the weight comes from the size ratio, half from the mean dimension ratio.
type MetadataRule struct {
	scale
}

func (r *MetadataRule) Name() string { return "Metadata" }

func (r *MetadataRule) Zero() types.RuleResult { return zero(sizeRatioEvidence) }

func (r *MetadataRule) Evaluate(in Input) types.RuleResult {
	sizeRatio := Ratio(in.Candidate.ByteSize, in.Target.ByteSize)
	evidence := fmt.Sprintf(sizeRatioEvidence, sizeRatio)

	// a GRAY/COLOR mismatch is not probative either way
	if !colorModesMatch(in.Target, in.Candidate) {
		return types.RuleResult{Evidence: evidence}
	}

	half := float64(r.max) / 2
	score := int(math.Floor(sizeRatio*half)) + int(math.Floor(dimensionRatio(in.Target, in.Candidate)*half))
	return r.result(score, evidence)
}

// dimensionRatio averages the width and height ratios, or is 0 unless all
// four dimensions are known
func dimensionRatio(target, candidate types.ImageSignature) float64 {
	if !target.Width.Valid || !target.Height.Valid || !candidate.Width.Valid || !candidate.Height.Valid {
		return 0
	}
	return (RatioInt(candidate.Width, target.Width) + RatioInt(candidate.Height, target.Height)) / 2
}

func colorModesMatch(a, b types.ImageSignature) bool {
	return a.ColorMode != types.ColorModeUnknown && a.ColorMode == b.ColorMode
}
