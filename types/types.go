package types

// Optional holds a value that may be unknown. Unknown values must never be
// read as zero: callers check Valid first.
type Optional[T any] struct {
	Value T
	Valid bool
}

// Known wraps a known value
func Known[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// Unknown returns an Optional with no value
func Unknown[T any]() Optional[T] {
	return Optional[T]{}
}

// ColorMode is the binary pixel-format class used by metadata comparison
type ColorMode int

const (
	ColorModeUnknown ColorMode = iota
	ColorModeGray
	ColorModeColor
)

func (m ColorMode) String() string {
	switch m {
	case ColorModeGray:
		return "GRAY"
	case ColorModeColor:
		return "COLOR"
	default:
		return "unknown"
	}
}

// ImageSignature holds the lightweight descriptor of an image file
type ImageSignature struct {
	ByteSize  Optional[int64]  `json:"byte_size"`
	Width     Optional[int]    `json:"width"`
	Height    Optional[int]    `json:"height"`
	ColorMode ColorMode        `json:"color_mode"`
	Format    Optional[string] `json:"format"`

	// Informational only, never scored
	Camera      string `json:"camera,omitempty"`
	Software    string `json:"software,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// TargetRecord is one registered reference image
type TargetRecord struct {
	ID        string         `json:"id"`
	Path      string         `json:"path"`
	Signature ImageSignature `json:"signature"`
}

// RuleResult is the output of a single rule for one target/candidate pair
type RuleResult struct {
	Score    int    `json:"score"`
	Fired    bool   `json:"fired"`
	Evidence string `json:"evidence"`
}

// RuleOutcome is a RuleResult tagged with the rule that produced it
type RuleOutcome struct {
	Rule string `json:"rule"`
	Max  int    `json:"max"`
	RuleResult
}

// MatchCandidateResult holds all rule outcomes of a candidate against one target
type MatchCandidateResult struct {
	TargetID string        `json:"target_id"`
	PerRule  []RuleOutcome `json:"per_rule"`
	Total    int           `json:"total"`
}

// Score returns the score of the named rule, or 0 if that rule is not active
func (r MatchCandidateResult) Score(rule string) int {
	for _, o := range r.PerRule {
		if o.Rule == rule {
			return o.Score
		}
	}
	return 0
}

// Verdict is the terminal output of a match query. MatchedTarget is empty
// when no target was accepted.
type Verdict struct {
	Candidate     string        `json:"candidate"`
	IsMatch       bool          `json:"is_match"`
	MatchedTarget string        `json:"matched_target,omitempty"`
	PerRule       []RuleOutcome `json:"per_rule"`
	Total         int           `json:"total"`
	MaxPossible   int           `json:"max_possible"`

	// FingerprintDistance is the dHash distance to the matched target, -1 if
	// unavailable
	FingerprintDistance int `json:"fingerprint_distance"`
}
