package commit

import (
	"fmt"
	"sort"

	"github.com/blang/semver/v4"

	"github.com/crierhq/crier/config"
)

// InvalidBaselineError is returned when the baseline version handed to the
// analyzer is not a parseable semantic version.
type InvalidBaselineError struct {
	Baseline string
	Err      error
}

func (e InvalidBaselineError) Error() string {
	return fmt.Sprintf("commit: invalid baseline version %q: %v", e.Baseline, e.Err)
}

func (e InvalidBaselineError) Unwrap() error { return e.Err }

// Evidence counts the commits backing a suggestion, by effective category.
type Evidence struct {
	Breaking int `json:"breaking"`
	Features int `json:"features"`
	Fixes    int `json:"fixes"`
	Other    int `json:"other"`
}

func (e Evidence) Total() int {
	return e.Breaking + e.Features + e.Fixes + e.Other
}

// Suggestion is one candidate next version.
type Suggestion struct {
	Version    semver.Version `json:"version"`
	Bump       BumpType       `json:"-"`
	BumpName   string         `json:"bump"`
	Confidence float64        `json:"confidence"`
	Reason     string         `json:"reason"`
	Evidence   Evidence       `json:"evidence"`
}

// SuggestResult holds all generated suggestions, ordered by descending
// confidence with bump severity breaking ties, plus the recommended one.
type SuggestResult struct {
	Suggestions []*Suggestion `json:"suggestions"`
	Recommended *Suggestion   `json:"recommended"`
}

// Analyzer inspects a changeset against a baseline version and suggests the
// next version. Severity governs the bump type, proportion only governs
// confidence: a single breaking commit among many forces a major bump.
type Analyzer struct {
	cfg config.Config
}

func NewAnalyzer(cfg config.Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

const emptyChangeSetReason = "no significant changes detected"

func (a *Analyzer) Suggest(baseline string, cs *ChangeSet) (*SuggestResult, error) {
	base, err := parseBaseline(baseline)
	if err != nil {
		return nil, InvalidBaselineError{Baseline: baseline, Err: err}
	}

	ev := cs.Tally()
	primary := primarySuggestion(base, ev)
	suggestions := []*Suggestion{primary}
	suggestions = append(suggestions, secondarySuggestions(base, ev, primary.Bump)...)

	recommended := primary
	if len(base.Pre) > 0 {
		recommended = prereleaseSuggestion(base, ev, primary)
		suggestions = append([]*Suggestion{recommended}, suggestions...)
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		si, sj := suggestions[i], suggestions[j]
		if si.Confidence != sj.Confidence {
			return si.Confidence > sj.Confidence
		}
		return si.Bump > sj.Bump
	})

	return &SuggestResult{
		Suggestions: suggestions,
		Recommended: recommended,
	}, nil
}

func primarySuggestion(base semver.Version, ev Evidence) *Suggestion {
	total := ev.Total()
	if total == 0 {
		return &Suggestion{
			Version:    applyBump(base, BumpPatch),
			Bump:       BumpPatch,
			BumpName:   BumpPatch.String(),
			Confidence: 0.1,
			Reason:     emptyChangeSetReason,
			Evidence:   ev,
		}
	}

	var bump BumpType
	var count int
	var reason string
	switch {
	case ev.Breaking > 0:
		bump, count = BumpMajor, ev.Breaking
		reason = fmt.Sprintf("%d breaking change(s) require a major bump", ev.Breaking)
	case ev.Features > 0:
		bump, count = BumpMinor, ev.Features
		reason = fmt.Sprintf("%d feature(s) require a minor bump", ev.Features)
	case ev.Fixes > 0:
		bump, count = BumpPatch, ev.Fixes
		reason = fmt.Sprintf("%d fix(es) require a patch bump", ev.Fixes)
	default:
		bump, count = BumpPatch, 0
		reason = emptyChangeSetReason
	}

	return &Suggestion{
		Version:    applyBump(base, bump),
		Bump:       bump,
		BumpName:   bump.String(),
		Confidence: confidence(count, total),
		Reason:     reason,
		Evidence:   ev,
	}
}

// confidence maps the dominance of the winning category to [0.5, 1.0]. The
// exact curve is a tunable; it only needs to be monotonic in count/total.
func confidence(count, total int) float64 {
	if total == 0 || count == 0 {
		return 0.1
	}
	return 0.5 + 0.5*float64(count)/float64(total)
}

// secondaryConfidence stays strictly below 0.5 so alternatives always sort
// after the category-backed primary suggestion.
func secondaryConfidence(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return 0.5 * float64(count) / float64(total)
}

func secondarySuggestions(base semver.Version, ev Evidence, primary BumpType) []*Suggestion {
	total := ev.Total()
	var out []*Suggestion
	if primary > BumpMinor && ev.Features > 0 {
		out = append(out, &Suggestion{
			Version:    applyBump(base, BumpMinor),
			Bump:       BumpMinor,
			BumpName:   BumpMinor.String(),
			Confidence: secondaryConfidence(ev.Features, total),
			Reason:     fmt.Sprintf("alternative: %d feature(s) would justify a minor bump", ev.Features),
			Evidence:   ev,
		})
	}
	if primary > BumpPatch && ev.Fixes > 0 {
		out = append(out, &Suggestion{
			Version:    applyBump(base, BumpPatch),
			Bump:       BumpPatch,
			BumpName:   BumpPatch.String(),
			Confidence: secondaryConfidence(ev.Fixes, total),
			Reason:     fmt.Sprintf("alternative: %d fix(es) would justify a patch bump", ev.Fixes),
			Evidence:   ev,
		})
	}
	return out
}

// prereleaseSuggestion overrides the category analysis when the baseline
// carries a prerelease component: the pending prerelease is continued instead.
func prereleaseSuggestion(base semver.Version, ev Evidence, primary *Suggestion) *Suggestion {
	return &Suggestion{
		Version:    nextPrerelease(base),
		Bump:       BumpPrerelease,
		BumpName:   BumpPrerelease.String(),
		Confidence: primary.Confidence,
		Reason:     fmt.Sprintf("baseline %s has a pending prerelease, which overrides category analysis", base),
		Evidence:   ev,
	}
}

func applyBump(base semver.Version, bump BumpType) semver.Version {
	next := semver.Version{Major: base.Major, Minor: base.Minor, Patch: base.Patch}
	switch bump {
	case BumpMajor:
		next.Major++
		next.Minor = 0
		next.Patch = 0
	case BumpMinor:
		next.Minor++
		next.Patch = 0
	case BumpPatch:
		next.Patch++
	case BumpPrerelease:
		return nextPrerelease(base)
	}
	return next
}

// nextPrerelease increments the trailing numeric prerelease component, so
// 1.2.3-rc.0 becomes 1.2.3-rc.1. A non-numeric trailer gets a ".0" appended.
func nextPrerelease(base semver.Version) semver.Version {
	next := base
	next.Pre = make([]semver.PRVersion, len(base.Pre))
	copy(next.Pre, base.Pre)
	if n := len(next.Pre); n > 0 && next.Pre[n-1].IsNumeric() {
		next.Pre[n-1].VersionNum++
		return next
	}
	pr, _ := semver.NewPRVersion("0")
	next.Pre = append(next.Pre, pr)
	return next
}
