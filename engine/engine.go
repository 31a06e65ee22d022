// Package engine scores a candidate image against every registered target,
// selects the best target and decides whether the match is confident enough
// to report.
package engine

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"imagedetective/imageprocessor"
	"imagedetective/logging"
	"imagedetective/registry"
	"imagedetective/rules"
	"imagedetective/types"
)

// Options tunes an Engine
type Options struct {
	// Workers bounds how many targets are scored at once, 1 if not positive
	Workers int

	Signature imageprocessor.SignatureOptions
}

// Engine matches candidates against a fixed registry with a fixed profile.
// It is safe for concurrent use.
type Engine struct {
	profile  Profile
	rules    []rules.Rule
	registry *registry.Registry
	opts     Options
	log      *zap.Logger
}

// Candidate is a query image prepared for scoring. Image is nil when the
// pixels could not be decoded.
type Candidate struct {
	Path      string
	Signature types.ImageSignature
	Image     *imageprocessor.Image
}

// New validates the profile and freezes it for the lifetime of the engine
func New(profile Profile, reg *registry.Registry, opts Options) (*Engine, error) {
	frozen := profile.Clone()
	built, err := frozen.Validate()
	if err != nil {
		return nil, err
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	return &Engine{
		profile:  frozen,
		rules:    built,
		registry: reg,
		opts:     opts,
		log:      logging.WithOperation("match"),
	}, nil
}

// Profile returns a copy of the active profile
func (e *Engine) Profile() Profile { return e.profile.Clone() }

// MaxPossible is the highest total any verdict of this engine can carry
func (e *Engine) MaxPossible() int { return e.profile.MaxPossible() }

// Match scores the image at path against every target and decides the
// verdict. Decode failures only zero the affected rules; the returned error
// is non-nil only when ctx is done.
func (e *Engine) Match(ctx context.Context, path string) (*types.Verdict, error) {
	cand := Candidate{
		Path:      path,
		Signature: imageprocessor.ExtractSignature(path, e.opts.Signature),
	}

	img, err := imageprocessor.LoadImage(path)
	if err != nil {
		e.log.Debug("candidate pixels unavailable", zap.String("path", path), zap.Error(err))
	} else {
		defer img.Close()
		cand.Image = img
	}

	results, err := e.Evaluate(ctx, cand)
	if err != nil {
		return nil, err
	}

	verdict := Decide(e.profile, results)
	verdict.Candidate = filepath.Base(path)
	if verdict.IsMatch && cand.Image != nil {
		verdict.FingerprintDistance = e.fingerprintDistance(verdict.MatchedTarget, cand.Image)
	}

	e.log.Info("candidate decided",
		zap.String("candidate", verdict.Candidate),
		zap.Bool("match", verdict.IsMatch),
		zap.String("target", verdict.MatchedTarget),
		zap.Int("total", verdict.Total),
		zap.Int("max_possible", verdict.MaxPossible),
	)
	return &verdict, nil
}

// Evaluate scores the candidate against every target. Results are in
// registration order.
func (e *Engine) Evaluate(ctx context.Context, cand Candidate) ([]types.MatchCandidateResult, error) {
	targets := e.registry.Records()
	results := make([]types.MatchCandidateResult, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for i, target := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.score(target, cand)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// score runs every active rule, in profile order, for one target. Every
// score counts toward the total whether or not its rule fired.
func (e *Engine) score(target types.TargetRecord, cand Candidate) types.MatchCandidateResult {
	in := rules.Input{
		Target:         target.Signature,
		Candidate:      cand.Signature,
		TargetImage:    e.registry.Image(target.ID),
		CandidateImage: cand.Image,
	}

	result := types.MatchCandidateResult{
		TargetID: target.ID,
		PerRule:  make([]types.RuleOutcome, len(e.rules)),
	}
	for i, r := range e.rules {
		res := r.Evaluate(in)
		result.PerRule[i] = types.RuleOutcome{Rule: r.Name(), Max: r.Max(), RuleResult: res}
		result.Total += res.Score
	}

	e.log.Debug("target scored",
		zap.String("candidate", filepath.Base(cand.Path)),
		zap.String("target", target.ID),
		zap.Int("total", result.Total),
	)
	return result
}

func (e *Engine) fingerprintDistance(targetID string, img *imageprocessor.Image) int {
	target, ok := e.registry.Get(targetID)
	if !ok {
		return -1
	}
	d, err := imageprocessor.FingerprintDistance(target.Signature.Fingerprint, img.Fingerprint())
	if err != nil {
		return -1
	}
	return d
}

// Decide selects the best target, applies the profile's bonuses and its
// accept threshold. The first result wins ties. A rejected verdict carries
// only zero forms and names no target.
func Decide(p Profile, results []types.MatchCandidateResult) types.Verdict {
	verdict := types.Verdict{
		MaxPossible:         p.MaxPossible(),
		FingerprintDistance: -1,
	}

	if len(results) == 0 {
		verdict.PerRule = zeroOutcomes(p)
		return verdict
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.Total > best.Total {
			best = r
		}
	}

	total := best.Total
	for _, b := range p.Bonuses {
		if p.applies(b, best) {
			total = min(verdict.MaxPossible, total+b.Points)
		}
	}

	if total < p.Threshold {
		verdict.PerRule = zeroOutcomes(p)
		return verdict
	}

	verdict.IsMatch = true
	verdict.MatchedTarget = best.TargetID
	verdict.PerRule = append([]types.RuleOutcome(nil), best.PerRule...)
	verdict.Total = total
	return verdict
}

// zeroOutcomes returns the canonical zero form of every active rule
func zeroOutcomes(p Profile) []types.RuleOutcome {
	out := make([]types.RuleOutcome, 0, len(p.Rules))
	for _, spec := range p.Rules {
		r, err := rules.New(spec.Kind, spec.Weight, max(spec.FireAt, 1))
		if err != nil {
			continue
		}
		out = append(out, types.RuleOutcome{Rule: r.Name(), Max: r.Max(), RuleResult: r.Zero()})
	}
	return out
}
