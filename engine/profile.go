package engine

import (
	"fmt"
	"strings"

	"imagedetective/rules"
	"imagedetective/types"
)

// RuleSpec activates one rule with its weight and firing bar
type RuleSpec struct {
	Kind   rules.Kind `yaml:"kind"`
	Weight int        `yaml:"weight"`
	FireAt int        `yaml:"fire_at"`
}

// Condition holds when the named rule scored at least MinScore
type Condition struct {
	Rule     rules.Kind `yaml:"rule"`
	MinScore int        `yaml:"min_score"`
}

// Bonus adds Points to the best target's total when all conditions hold
type Bonus struct {
	Points int         `yaml:"points"`
	When   []Condition `yaml:"when"`
}

// Profile is a complete scoring configuration: which rules run, with what
// weights, how totals are corroborated and where the accept bar lies.
type Profile struct {
	Name      string     `yaml:"name"`
	Rules     []RuleSpec `yaml:"rules"`
	Threshold int        `yaml:"threshold"`
	Bonuses   []Bonus    `yaml:"bonuses"`
}

// Profile names
const (
	ProfileBase     = "base"
	ProfileExtended = "extended"
)

// BaseProfile scores metadata, color and template evidence out of 100
func BaseProfile() Profile {
	return Profile{
		Name: ProfileBase,
		Rules: []RuleSpec{
			{Kind: rules.KindMetadata, Weight: 30, FireAt: 10},
			{Kind: rules.KindHistogram, Weight: 30, FireAt: 10},
			{Kind: rules.KindTemplate, Weight: 40, FireAt: 15},
		},
		Threshold: 60,
		Bonuses: []Bonus{
			{Points: 12, When: []Condition{{Rule: rules.KindTemplate, MinScore: 10}}},
		},
	}
}

// ExtendedProfile adds edge evidence and scores out of 120
func ExtendedProfile() Profile {
	return Profile{
		Name: ProfileExtended,
		Rules: []RuleSpec{
			{Kind: rules.KindMetadata, Weight: 30, FireAt: 10},
			{Kind: rules.KindHistogram, Weight: 30, FireAt: 10},
			{Kind: rules.KindTemplate, Weight: 40, FireAt: 15},
			{Kind: rules.KindEdge, Weight: 20, FireAt: 8},
		},
		Threshold: 62,
		Bonuses: []Bonus{
			{Points: 12, When: []Condition{{Rule: rules.KindTemplate, MinScore: 3}}},
			{Points: 10, When: []Condition{
				{Rule: rules.KindMetadata, MinScore: 10},
				{Rule: rules.KindHistogram, MinScore: 8},
			}},
		},
	}
}

// ProfileByName returns a built-in profile
func ProfileByName(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProfileBase, "":
		return BaseProfile(), nil
	case ProfileExtended:
		return ExtendedProfile(), nil
	default:
		return Profile{}, fmt.Errorf("unknown profile %q (want %s or %s)", name, ProfileBase, ProfileExtended)
	}
}

// MaxPossible is the sum of the active rules' weights
func (p Profile) MaxPossible() int {
	total := 0
	for _, r := range p.Rules {
		total += r.Weight
	}
	return total
}

// Clone returns a deep copy
func (p Profile) Clone() Profile {
	out := p
	out.Rules = append([]RuleSpec(nil), p.Rules...)
	out.Bonuses = make([]Bonus, len(p.Bonuses))
	for i, b := range p.Bonuses {
		out.Bonuses[i] = Bonus{Points: b.Points, When: append([]Condition(nil), b.When...)}
	}
	return out
}

// Validate checks the profile and builds its rules in order
func (p Profile) Validate() ([]rules.Rule, error) {
	if len(p.Rules) == 0 {
		return nil, fmt.Errorf("profile %q has no rules", p.Name)
	}

	active := make(map[rules.Kind]bool, len(p.Rules))
	built := make([]rules.Rule, 0, len(p.Rules))
	for _, spec := range p.Rules {
		if active[spec.Kind] {
			return nil, fmt.Errorf("profile %q: rule %s listed twice", p.Name, spec.Kind)
		}
		active[spec.Kind] = true

		r, err := rules.New(spec.Kind, spec.Weight, spec.FireAt)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
		built = append(built, r)
	}

	if p.Threshold < 0 || p.Threshold > p.MaxPossible() {
		return nil, fmt.Errorf("profile %q: threshold %d outside [0,%d]", p.Name, p.Threshold, p.MaxPossible())
	}

	for _, b := range p.Bonuses {
		if b.Points < 0 {
			return nil, fmt.Errorf("profile %q: negative bonus %d", p.Name, b.Points)
		}
		if len(b.When) == 0 {
			return nil, fmt.Errorf("profile %q: bonus of %d points has no condition", p.Name, b.Points)
		}
		for _, c := range b.When {
			if !active[c.Rule] {
				return nil, fmt.Errorf("profile %q: bonus depends on inactive rule %s", p.Name, c.Rule)
			}
		}
	}
	return built, nil
}

// index returns the position of kind among the active rules, or -1
func (p Profile) index(kind rules.Kind) int {
	for i, r := range p.Rules {
		if r.Kind == kind {
			return i
		}
	}
	return -1
}

// applies reports whether every condition of b holds for result
func (p Profile) applies(b Bonus, result types.MatchCandidateResult) bool {
	for _, c := range b.When {
		i := p.index(c.Rule)
		if i < 0 || i >= len(result.PerRule) || result.PerRule[i].Score < c.MinScore {
			return false
		}
	}
	return true
}
