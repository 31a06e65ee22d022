// Package config loads run settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"imagedetective/engine"
	"imagedetective/rules"
	"imagedetective/signalhandler"
	"imagedetective/utils"
)

// Environment variables that override file values
const (
	EnvProfile  = "DETECTIVE_PROFILE"
	EnvTargets  = "DETECTIVE_TARGETS"
	EnvDatabase = "DETECTIVE_DATABASE"
	EnvWorkers  = "DETECTIVE_WORKERS"
	EnvDebug    = "DETECTIVE_DEBUG"
)

// Config holds every setting of a run
type Config struct {
	Profile          string   `yaml:"profile"`
	Targets          string   `yaml:"targets"`
	Candidates       []string `yaml:"candidates"`
	Extensions       []string `yaml:"extensions"`
	Database         string   `yaml:"database"`
	ResultsFile      string   `yaml:"results_file"`
	SummaryFile      string   `yaml:"summary_file"`
	Workers          int      `yaml:"workers"`
	LogFile          string   `yaml:"log_file"`
	Debug            bool     `yaml:"debug"`
	ExiftoolFallback bool     `yaml:"exiftool_fallback"`

	// Profiles tunes the built-in profiles, keyed by profile name
	Profiles map[string]ProfileOverride `yaml:"profiles"`
}

// ProfileOverride adjusts a built-in profile. Nil fields keep the built-in value.
type ProfileOverride struct {
	Threshold *int                    `yaml:"threshold"`
	Rules     map[string]RuleOverride `yaml:"rules"`
	Bonuses   []engine.Bonus          `yaml:"bonuses"`
}

// RuleOverride adjusts the weight or firing bar of one active rule
type RuleOverride struct {
	Weight *int `yaml:"weight"`
	FireAt *int `yaml:"fire_at"`
}

// Default returns the settings used when nothing is configured
func Default() Config {
	return Config{
		Profile:     engine.ProfileBase,
		Targets:     "targets",
		Database:    utils.GetDefaultDatabasePath(),
		ResultsFile: "results.txt",
		Workers:     signalhandler.GetOptimalProcs(),
		LogFile:     "imagedetective.log",
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("cannot read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("cannot parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides settings from environment variables read through lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvProfile); ok && v != "" {
		c.Profile = v
	}
	if v, ok := lookup(EnvTargets); ok && v != "" {
		c.Targets = v
	}
	if v, ok := lookup(EnvDatabase); ok && v != "" {
		c.Database = v
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvDebug); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebug, err)
		}
		c.Debug = b
	}
	return nil
}

// Validate checks settings that do not depend on the file system
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := c.ResolveProfile(); err != nil {
		return err
	}
	return nil
}

// ResolveProfile returns the selected built-in profile with its overrides
// applied and validated
func (c Config) ResolveProfile() (engine.Profile, error) {
	p, err := engine.ProfileByName(c.Profile)
	if err != nil {
		return engine.Profile{}, err
	}

	if o, ok := c.Profiles[p.Name]; ok {
		if o.Threshold != nil {
			p.Threshold = *o.Threshold
		}
		for kind, ro := range o.Rules {
			i := ruleIndex(p, rules.Kind(strings.ToLower(kind)))
			if i < 0 {
				return engine.Profile{}, fmt.Errorf("profile %s: override of inactive rule %q", p.Name, kind)
			}
			if ro.Weight != nil {
				p.Rules[i].Weight = *ro.Weight
			}
			if ro.FireAt != nil {
				p.Rules[i].FireAt = *ro.FireAt
			}
		}
		if o.Bonuses != nil {
			p.Bonuses = o.Bonuses
		}
	}

	if _, err := p.Validate(); err != nil {
		return engine.Profile{}, err
	}
	return p, nil
}

func ruleIndex(p engine.Profile, kind rules.Kind) int {
	for i, r := range p.Rules {
		if r.Kind == kind {
			return i
		}
	}
	return -1
}
