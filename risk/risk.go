// Package risk scores how dangerous a set of changes is to release, from
// diff statistics and the changeset's breaking-change signal.
package risk

import (
	"fmt"
	"strings"

	"github.com/crierhq/crier/commit"
	"github.com/crierhq/crier/config"
	"github.com/crierhq/crier/model"
)

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Assessment is the result of scoring one changeset, with the raw inputs
// echoed back for the reporting collaborator.
type Assessment struct {
	Score           int      `json:"score"`
	Level           Level    `json:"level"`
	Factors         []string `json:"factors"`
	FilesChanged    int      `json:"files_changed"`
	LinesAdded      int      `json:"lines_added"`
	LinesRemoved    int      `json:"lines_removed"`
	AffectedModules []string `json:"affected_modules,omitempty"`
}

// signal point contributions. The factor wording is consumed verbatim by
// reporting, so changing it breaks golden output.
const (
	breakingPoints = 35
	corePoints     = 20
	refactorPoints = 15
	volumeCap      = 20
	securityPoints = 10

	// line count at which the volume signal saturates
	volumeNorm = 2000

	highThreshold   = 70
	mediumThreshold = 40
)

var securityKeywords = []string{"security", "vulnerability", "cve", "auth bypass", "injection"}

// Analyzer scores changes by summing independent signals, clamped to [0,100].
type Analyzer struct {
	cfg config.Config
}

func NewAnalyzer(cfg config.Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

func (a *Analyzer) Analyze(stats model.DiffStats, cs *commit.ChangeSet) *Assessment {
	res := &Assessment{
		FilesChanged: stats.FilesChanged,
		LinesAdded:   stats.LinesAdded,
		LinesRemoved: stats.LinesRemoved,
	}
	score := 0

	if breaking := cs.Tally().Breaking; breaking > 0 {
		score += breakingPoints
		res.Factors = append(res.Factors, fmt.Sprintf("%d breaking change(s) present", breaking))
	}

	if modules := matchModules(stats.TouchedPaths, a.cfg.CoreModulePatterns); len(modules) > 0 {
		score += corePoints
		res.AffectedModules = modules
		res.Factors = append(res.Factors, fmt.Sprintf("core modules touched: %s", strings.Join(modules, ", ")))
	}

	if threshold := a.cfg.LargeRefactorThreshold; threshold > 0 && stats.FilesChanged >= threshold {
		score += refactorPoints
		res.Factors = append(res.Factors, fmt.Sprintf("large refactor: %d files changed", stats.FilesChanged))
	}

	if volume := volumeScore(stats.LinesAdded + stats.LinesRemoved); volume > 0 {
		score += volume
		res.Factors = append(res.Factors, fmt.Sprintf("change volume: %d lines", stats.LinesAdded+stats.LinesRemoved))
	}

	if n := securityCount(cs); n > 0 {
		score += securityPoints
		res.Factors = append(res.Factors, fmt.Sprintf("%d security-sensitive commit(s)", n))
	}

	if score > 100 {
		score = 100
	}
	res.Score = score
	res.Level = level(score)
	return res
}

// volumeScore scales total changed lines to 0..volumeCap. Larger diffs are
// riskier, but the signal saturates rather than dominating.
func volumeScore(lines int) int {
	if lines <= 0 {
		return 0
	}
	score := lines * volumeCap / volumeNorm
	if score > volumeCap {
		return volumeCap
	}
	return score
}

func securityCount(cs *commit.ChangeSet) int {
	n := 0
	for _, rec := range cs.Records {
		if isSecuritySensitive(rec) {
			n++
		}
	}
	return n
}

func isSecuritySensitive(rec *commit.Record) bool {
	if strings.Contains(strings.ToLower(rec.CommitType), "security") {
		return true
	}
	subject := strings.ToLower(rec.Subject)
	for _, kw := range securityKeywords {
		if strings.Contains(subject, kw) {
			return true
		}
	}
	return false
}

func matchModules(paths, patterns []string) []string {
	var matched []string
	seen := make(map[string]bool)
	for _, p := range paths {
		for _, pattern := range patterns {
			if GlobMatches(p, pattern) && !seen[p] {
				seen[p] = true
				matched = append(matched, p)
				break
			}
		}
	}
	return matched
}

func level(score int) Level {
	switch {
	case score >= highThreshold:
		return LevelHigh
	case score >= mediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// GlobMatches matches s against a simple glob where "*" matches any run of
// characters. A pattern without "*" must match exactly.
func GlobMatches(s string, glob string) bool {
	parts := strings.Split(glob, "*")
	if len(parts) == 1 {
		return s == glob
	}
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		s = s[idx+len(part):]
	}
	return strings.HasSuffix(s, parts[len(parts)-1])
}
