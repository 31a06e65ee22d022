package engine

import (
	"testing"

	"imagedetective/types"
)

func TestFormatReport(t *testing.T) {
	match := types.Verdict{
		Candidate:     "crop_01.jpg",
		IsMatch:       true,
		MatchedTarget: "original.png",
		PerRule: []types.RuleOutcome{
			{Rule: "Metadata", Max: 30, RuleResult: types.RuleResult{Score: 4, Fired: false, Evidence: "Size ratio 0.18"}},
			{Rule: "Histogram", Max: 30, RuleResult: types.RuleResult{Score: 28, Fired: true, Evidence: "Correlation 0.96"}},
			{Rule: "Template", Max: 40, RuleResult: types.RuleResult{Score: 37, Fired: true, Evidence: "Match score 0.94"}},
		},
		Total:       81,
		MaxPossible: 100,
	}
	want := "Processing: crop_01.jpg\n" +
		"  Rule 1 (Metadata): NO MATCH - Size ratio 0.18 -> 4/30 points\n" +
		"  Rule 2 (Histogram): FIRED - Correlation 0.96 -> 28/30 points\n" +
		"  Rule 3 (Template): FIRED - Match score 0.94 -> 37/40 points\n" +
		"Final Score: 81/100 -> MATCH to original.png"
	if got := FormatReport(match); got != want {
		t.Errorf("match report:\n%s\nwant:\n%s", got, want)
	}

	rejected := Decide(ExtendedProfile(), nil)
	rejected.Candidate = "cat.jpg"
	want = "Processing: cat.jpg\n" +
		"  Rule 1 (Metadata): NO MATCH - Size ratio 0.00 -> 0/30 points\n" +
		"  Rule 2 (Histogram): NO MATCH - Correlation 0.00 -> 0/30 points\n" +
		"  Rule 3 (Template): NO MATCH - Match score 0.00 -> 0/40 points\n" +
		"  Rule 4 (Edge Detection): NO MATCH - Edge score 0.00 -> 0/20 points\n" +
		"Final Score: 0/120 -> REJECTED"
	if got := FormatReport(rejected); got != want {
		t.Errorf("rejection report:\n%s\nwant:\n%s", got, want)
	}
}
