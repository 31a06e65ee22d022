// Package rules implements the independent scoring rules that compare a
// candidate image against one registered target.
package rules

import (
	"fmt"
	"math"

	"imagedetective/imageprocessor"
	"imagedetective/types"
)

// Kind names a rule implementation in configuration
type Kind string

const (
	KindMetadata  Kind = "metadata"
	KindHistogram Kind = "histogram"
	KindTemplate  Kind = "template"
	KindEdge      Kind = "edge"
)

// Input is everything a rule may look at for one target/candidate pair.
// Images are nil when their pixels could not be decoded.
type Input struct {
	Target         types.ImageSignature
	Candidate      types.ImageSignature
	TargetImage    *imageprocessor.Image
	CandidateImage *imageprocessor.Image
}

// Rule scores one target/candidate pair. Evaluate must always return a score
// in [0, Max()] and must not fail: missing inputs yield Zero().
type Rule interface {
	// Name is the label used in reports
	Name() string
	Max() int
	Zero() types.RuleResult
	Evaluate(in Input) types.RuleResult
}

// New builds a rule of the given kind with its weight and firing bar
func New(kind Kind, weight, fireAt int) (Rule, error) {
	if weight <= 0 {
		return nil, fmt.Errorf("rule %s: weight must be positive, got %d", kind, weight)
	}
	if fireAt < 1 || fireAt > weight {
		return nil, fmt.Errorf("rule %s: firing bar %d outside [1,%d]", kind, fireAt, weight)
	}

	switch kind {
	case KindMetadata:
		return &MetadataRule{scale: scale{max: weight, fireAt: fireAt}}, nil
	case KindHistogram:
		return &ColorRule{scale: scale{max: weight, fireAt: fireAt}}, nil
	case KindTemplate:
		return &TemplateRule{scale: scale{max: weight, fireAt: fireAt}}, nil
	case KindEdge:
		return &EdgeRule{scale: scale{max: weight, fireAt: fireAt}}, nil
	default:
		return nil, fmt.Errorf("unknown rule kind %q", kind)
	}
}

// scale carries the weight and firing bar shared by every rule
type scale struct {
	max    int
	fireAt int
}

func (s scale) Max() int { return s.max }

// fromSimilarity turns a similarity in [0,1] into a bounded result
func (s scale) fromSimilarity(sim float64, evidence string) types.RuleResult {
	return s.result(int(math.Floor(sim*float64(s.max))), evidence)
}

func (s scale) result(score int, evidence string) types.RuleResult {
	score = min(max(score, 0), s.max)
	return types.RuleResult{Score: score, Fired: score >= s.fireAt, Evidence: evidence}
}

func zero(format string) types.RuleResult {
	return types.RuleResult{Evidence: fmt.Sprintf(format, 0.0)}
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
