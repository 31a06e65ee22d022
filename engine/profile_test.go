package engine

import (
	"testing"

	"imagedetective/rules"
)

func TestBuiltinProfiles(t *testing.T) {
	tests := []struct {
		name      string
		max       int
		threshold int
		rules     int
	}{
		{ProfileBase, 100, 60, 3},
		{ProfileExtended, 120, 62, 4},
	}
	for _, tt := range tests {
		p, err := ProfileByName(tt.name)
		if err != nil {
			t.Fatalf("ProfileByName(%s): %v", tt.name, err)
		}
		if p.MaxPossible() != tt.max || p.Threshold != tt.threshold || len(p.Rules) != tt.rules {
			t.Errorf("%s: max %d threshold %d rules %d", tt.name, p.MaxPossible(), p.Threshold, len(p.Rules))
		}
		built, err := p.Validate()
		if err != nil {
			t.Errorf("%s does not validate: %v", tt.name, err)
		}
		if len(built) != tt.rules {
			t.Errorf("%s built %d rules", tt.name, len(built))
		}
	}

	if _, err := ProfileByName("turbo"); err == nil {
		t.Errorf("expected error for unknown profile")
	}
	if p, err := ProfileByName(" Extended "); err != nil || p.Name != ProfileExtended {
		t.Errorf("profile names are case-insensitive, got %v %v", p.Name, err)
	}
}

func TestProfileValidate(t *testing.T) {
	mutate := func(fn func(*Profile)) Profile {
		p := BaseProfile()
		fn(&p)
		return p
	}

	tests := []struct {
		name    string
		profile Profile
	}{
		{"no rules", mutate(func(p *Profile) { p.Rules = nil })},
		{"duplicate rule", mutate(func(p *Profile) { p.Rules = append(p.Rules, p.Rules[0]) })},
		{"unknown kind", mutate(func(p *Profile) { p.Rules[0].Kind = "exif" })},
		{"threshold above max", mutate(func(p *Profile) { p.Threshold = 101 })},
		{"negative threshold", mutate(func(p *Profile) { p.Threshold = -1 })},
		{"bonus on inactive rule", mutate(func(p *Profile) {
			p.Bonuses = []Bonus{{Points: 5, When: []Condition{{Rule: rules.KindEdge, MinScore: 1}}}}
		})},
		{"unconditional bonus", mutate(func(p *Profile) { p.Bonuses = []Bonus{{Points: 5}} })},
		{"negative bonus", mutate(func(p *Profile) { p.Bonuses[0].Points = -3 })},
	}
	for _, tt := range tests {
		if _, err := tt.profile.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestProfileClone(t *testing.T) {
	p := ExtendedProfile()
	c := p.Clone()
	c.Rules[0].Weight = 1
	c.Bonuses[1].When[0].MinScore = 99

	if p.Rules[0].Weight != 30 || p.Bonuses[1].When[0].MinScore != 10 {
		t.Errorf("Clone shares memory with the original")
	}
}
