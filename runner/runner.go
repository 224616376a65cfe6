// Package runner wires the pipeline together for command-line execution.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/crierhq/crier/commit"
	"github.com/crierhq/crier/config"
	"github.com/crierhq/crier/risk"
	"github.com/crierhq/crier/search"
	"github.com/crierhq/crier/stats"
	"github.com/crierhq/crier/vcs"
)

type Runner struct {
	cfg      config.Config
	vcs      vcs.Interface
	parser   *commit.Parser
	analyzer *commit.Analyzer
	risk     *risk.Analyzer
	engine   *search.Engine
}

func New(cfg config.Config, vcs vcs.Interface) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{
		cfg:      cfg,
		vcs:      vcs,
		parser:   commit.NewParser(cfg),
		analyzer: commit.NewAnalyzer(cfg),
		risk:     risk.NewAnalyzer(cfg),
		engine:   search.New(),
	}, nil
}

// BuildChangeSet reads and classifies all commits in the range. An empty from
// reads the whole history reachable from to; an empty to defaults to HEAD.
func (r *Runner) BuildChangeSet(ctx context.Context, from, to string) (*commit.ChangeSet, error) {
	commits, err := r.vcs.ReadCommits(ctx, rangeQuery(from, to))
	if err != nil {
		return nil, err
	}
	cs := commit.NewChangeSet(from, to)
	cs.Add(r.parser.Parse(commits)...)
	r.cfg.Debugf("changeset %s: %d commits", rangeQuery(from, to), cs.Len())
	return cs, nil
}

// Suggest recommends the next version for the range. An empty baseline falls
// back to the latest release tag, or 0.0.0 when the repository has none.
func (r *Runner) Suggest(ctx context.Context, baseline, from, to string) (*commit.SuggestResult, error) {
	if baseline == "" {
		var err error
		baseline, err = r.latestBaseline(ctx)
		if err != nil {
			return nil, err
		}
		r.cfg.Debugf("using baseline %s", baseline)
	}
	cs, err := r.BuildChangeSet(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return r.analyzer.Suggest(baseline, cs)
}

func (r *Runner) latestBaseline(ctx context.Context) (string, error) {
	tags, err := r.vcs.ReadTags(ctx, "v*")
	if err != nil {
		return "", err
	}
	latest, err := commit.SemverLatest(tags, "")
	if err != nil {
		if errors.Is(err, commit.ErrNoTags) {
			return "0.0.0", nil
		}
		return "", err
	}
	return latest.String(), nil
}

// Risk scores the range using diff statistics from the vcs backend.
func (r *Runner) Risk(ctx context.Context, from, to string) (*risk.Assessment, error) {
	cs, err := r.BuildChangeSet(ctx, from, to)
	if err != nil {
		return nil, err
	}
	diff, err := r.vcs.ReadDiffStats(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return r.risk.Analyze(*diff, cs), nil
}

// Stats aggregates distributions over the range.
func (r *Runner) Stats(ctx context.Context, from, to string) (*stats.Stats, error) {
	cs, err := r.BuildChangeSet(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return stats.Collect(cs), nil
}

// Search indexes the range and runs one query against it.
func (r *Runner) Search(ctx context.Context, from, to string, q search.Query) (*search.Result, error) {
	cs, err := r.BuildChangeSet(ctx, from, to)
	if err != nil {
		return nil, err
	}
	r.engine.BuildIndex(cs)
	return r.engine.Search(q)
}

func rangeQuery(from, to string) string {
	if to == "" {
		to = "HEAD"
	}
	if from == "" {
		return to
	}
	return fmt.Sprintf("%s..%s", from, to)
}
