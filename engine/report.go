package engine

import (
	"fmt"
	"strings"

	"imagedetective/types"
)

// FormatReport renders a verdict as the multi-line evidence report, without
// a trailing newline:
//
//	Processing: crop.jpg
//	  Rule 1 (Metadata): FIRED - Size ratio 0.41 -> 12/30 points
//	  ...
//	Final Score: 87/100 -> MATCH to original.png
func FormatReport(v types.Verdict) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Processing: %s", v.Candidate)

	for i, o := range v.PerRule {
		status := "NO MATCH"
		if o.Fired {
			status = "FIRED"
		}
		fmt.Fprintf(&b, "\n  Rule %d (%s): %s - %s -> %d/%d points", i+1, o.Rule, status, o.Evidence, o.Score, o.Max)
	}

	fmt.Fprintf(&b, "\nFinal Score: %d/%d -> ", v.Total, v.MaxPossible)
	if v.IsMatch {
		fmt.Fprintf(&b, "MATCH to %s", v.MatchedTarget)
	} else {
		b.WriteString("REJECTED")
	}
	return b.String()
}
