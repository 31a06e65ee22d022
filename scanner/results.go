package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"imagedetective/logging"
	"imagedetective/utils"
)

// WriteResults writes the reports of successful results to path, one block
// per candidate separated by newlines
func WriteResults(path string, results []MatchResult) error {
	if err := utils.WriteLines(path, Reports(results)); err != nil {
		return logging.NewOperationError("write results", path, err)
	}
	return nil
}

// Summary is the YAML document written after a batch run
type Summary struct {
	RunID      string          `yaml:"run_id"`
	Profile    string          `yaml:"profile"`
	StartedAt  string          `yaml:"started_at"`
	Elapsed    string          `yaml:"elapsed"`
	Candidates int             `yaml:"candidates"`
	Matches    int             `yaml:"matches"`
	Rejected   int             `yaml:"rejected"`
	Errors     int             `yaml:"errors"`
	Verdicts   []SummaryRecord `yaml:"verdicts"`
}

// SummaryRecord is one candidate line of a Summary
type SummaryRecord struct {
	Candidate     string `yaml:"candidate"`
	Match         bool   `yaml:"match"`
	MatchedTarget string `yaml:"matched_target,omitempty"`
	Score         string `yaml:"score,omitempty"`
	Error         string `yaml:"error,omitempty"`
}

// Summarize condenses a run into a Summary
func Summarize(run Run) Summary {
	s := Summary{
		RunID:      run.ID,
		Profile:    run.Profile,
		StartedAt:  run.StartedAt.Format(time.RFC3339),
		Elapsed:    run.Elapsed.Round(time.Millisecond).String(),
		Candidates: len(run.Results),
	}

	for _, r := range run.Results {
		rec := SummaryRecord{Candidate: filepath.Base(r.Path)}
		switch {
		case r.Error != nil:
			s.Errors++
			rec.Error = r.Error.Error()
		default:
			v := r.Verdict
			rec.Match = v.IsMatch
			rec.MatchedTarget = v.MatchedTarget
			rec.Score = fmt.Sprintf("%d/%d", v.Total, v.MaxPossible)
			if v.IsMatch {
				s.Matches++
			} else {
				s.Rejected++
			}
		}
		s.Verdicts = append(s.Verdicts, rec)
	}
	return s
}

// WriteSummary writes the YAML summary of a run to path
func WriteSummary(path string, run Run) error {
	data, err := yaml.Marshal(Summarize(run))
	if err != nil {
		return logging.NewOperationError("write summary", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return logging.NewOperationError("write summary", path, err)
	}
	return nil
}
