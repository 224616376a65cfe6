package commit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/blang/semver/v4"

	"github.com/crierhq/crier/config"
	"github.com/crierhq/crier/model"
)

func newTestAnalyzer() *Analyzer {
	tio, _, _ := config.MockTermIO("")
	return NewAnalyzer(config.NewWithTerminalIO(nil, &tio))
}

func changeSetOf(recs ...*Record) *ChangeSet {
	cs := NewChangeSet("v0.0.0", "HEAD")
	cs.Add(recs...)
	return cs
}

func record(id, commitType string, breaking bool) *Record {
	return &Record{
		Commit:     &model.Commit{ID: id, Subject: commitType + ": something"},
		CommitType: commitType,
		Breaking:   breaking,
	}
}

func TestSuggestPrecedence(t *testing.T) {
	tcs := []struct {
		name          string
		baseline      string
		records       []*Record
		expectBump    BumpType
		expectVersion string
	}{
		{
			name:          "breaking-wins",
			baseline:      "1.2.3",
			records:       []*Record{record("a", "feat", true)},
			expectBump:    BumpMajor,
			expectVersion: "2.0.0",
		},
		{
			name:          "feature",
			baseline:      "1.2.3",
			records:       []*Record{record("a", "feat", false)},
			expectBump:    BumpMinor,
			expectVersion: "1.3.0",
		},
		{
			name:          "fix",
			baseline:      "1.2.3",
			records:       []*Record{record("a", "fix", false)},
			expectBump:    BumpPatch,
			expectVersion: "1.2.4",
		},
		{
			name:          "fix-and-feat",
			baseline:      "1.2.3",
			records:       []*Record{record("a", "fix", false), record("b", "feat", false)},
			expectBump:    BumpMinor,
			expectVersion: "1.3.0",
		},
		{
			name:          "chores-only",
			baseline:      "1.2.3",
			records:       []*Record{record("a", "chore", false), record("b", "docs", false)},
			expectBump:    BumpPatch,
			expectVersion: "1.2.4",
		},
		{
			name:          "v-prefixed-baseline",
			baseline:      "v0.9.0",
			records:       []*Record{record("a", "feat", false)},
			expectBump:    BumpMinor,
			expectVersion: "0.10.0",
		},
	}

	a := newTestAnalyzer()
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			res, err := a.Suggest(tc.baseline, changeSetOf(tc.records...))
			if err != nil {
				t.Fatal(err)
			}
			rec := res.Recommended
			if rec.Bump != tc.expectBump {
				t.Errorf("expected bump %s, got %s", tc.expectBump, rec.Bump)
			}
			expect := semver.MustParse(tc.expectVersion)
			if rec.Version.NE(expect) {
				t.Errorf("expected version %s, got %s", expect, rec.Version)
			}
		})
	}
}

// A single breaking change forces a major bump no matter how many other
// commits surround it. Only the confidence reflects the proportions.
func TestSuggestSeverityDominatesVolume(t *testing.T) {
	recs := []*Record{record("breaking0", "refactor", true)}
	for i := 0; i < 99; i++ {
		recs = append(recs, record(fmt.Sprintf("fix%02d", i), "fix", false))
	}

	a := newTestAnalyzer()
	res, err := a.Suggest("1.2.3", changeSetOf(recs...))
	if err != nil {
		t.Fatal(err)
	}
	if res.Recommended.Bump != BumpMajor {
		t.Fatalf("expected major bump, got %s", res.Recommended.Bump)
	}
	if res.Recommended.Version.NE(semver.MustParse("2.0.0")) {
		t.Fatalf("expected 2.0.0, got %s", res.Recommended.Version)
	}
	if res.Recommended.Confidence >= 0.75 {
		t.Errorf("expected a drowned-out breaking change to lower confidence, got %f", res.Recommended.Confidence)
	}
	if ev := res.Recommended.Evidence; ev.Breaking != 1 || ev.Fixes != 99 {
		t.Errorf("unexpected evidence: %+v", ev)
	}

	// all-breaking changesets are near-certain
	res2, err := a.Suggest("1.2.3", changeSetOf(record("a", "feat", true)))
	if err != nil {
		t.Fatal(err)
	}
	if res2.Recommended.Confidence < 0.99 {
		t.Errorf("expected confidence near 1.0, got %f", res2.Recommended.Confidence)
	}
}

func TestSuggestEmptyChangeSet(t *testing.T) {
	a := newTestAnalyzer()
	res, err := a.Suggest("1.2.3", changeSetOf())
	if err != nil {
		t.Fatal(err)
	}
	rec := res.Recommended
	if rec.Bump != BumpPatch {
		t.Fatalf("expected patch bump, got %s", rec.Bump)
	}
	if rec.Reason != "no significant changes detected" {
		t.Fatalf("unexpected reason: %q", rec.Reason)
	}
	if rec.Confidence > 0.2 {
		t.Fatalf("expected low confidence, got %f", rec.Confidence)
	}
	if len(res.Suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(res.Suggestions))
	}
}

func TestSuggestSecondaries(t *testing.T) {
	recs := []*Record{
		record("a", "feat", true),
		record("b", "feat", false),
		record("c", "fix", false),
	}

	a := newTestAnalyzer()
	res, err := a.Suggest("1.2.3", changeSetOf(recs...))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(res.Suggestions))
	}
	if res.Suggestions[0] != res.Recommended {
		t.Fatal("expected recommended suggestion to sort first")
	}
	expectBumps := []BumpType{BumpMajor, BumpMinor, BumpPatch}
	for i, expect := range expectBumps {
		if res.Suggestions[i].Bump != expect {
			t.Errorf("suggestion %d: expected %s, got %s", i, expect, res.Suggestions[i].Bump)
		}
	}
	for i := 1; i < len(res.Suggestions); i++ {
		if res.Suggestions[i].Confidence > res.Suggestions[i-1].Confidence {
			t.Errorf("expected confidence to be non-increasing at %d", i)
		}
	}
}

func TestSuggestPrereleaseBaseline(t *testing.T) {
	a := newTestAnalyzer()
	res, err := a.Suggest("1.2.3-rc.0", changeSetOf(record("a", "feat", false)))
	if err != nil {
		t.Fatal(err)
	}
	rec := res.Recommended
	if rec.Bump != BumpPrerelease {
		t.Fatalf("expected prerelease bump, got %s", rec.Bump)
	}
	if got := rec.Version.String(); got != "1.2.3-rc.1" {
		t.Fatalf("expected 1.2.3-rc.1, got %s", got)
	}
}

func TestSuggestInvalidBaseline(t *testing.T) {
	a := newTestAnalyzer()
	_, err := a.Suggest("not-a-version", changeSetOf(record("a", "fix", false)))
	if err == nil {
		t.Fatal("expected an error for an unparseable baseline")
	}
	var ibe InvalidBaselineError
	if !errors.As(err, &ibe) {
		t.Fatalf("expected InvalidBaselineError, got %T: %v", err, err)
	}
	if ibe.Baseline != "not-a-version" {
		t.Fatalf("expected baseline to be preserved, got %q", ibe.Baseline)
	}
}

func TestSemverLatest(t *testing.T) {
	tcs := []struct {
		name       string
		tags       []string
		prerelease string
		expect     string
		expectErr  bool
	}{
		{
			name:   "basic",
			tags:   []string{"v0.1.0", "v0.2.0", "v0.1.5"},
			expect: "0.2.0",
		},
		{
			name:   "skips-prereleases",
			tags:   []string{"v0.1.0", "v0.2.0-rc.0"},
			expect: "0.1.0",
		},
		{
			name:       "rc-channel",
			tags:       []string{"v0.1.0", "v0.2.0-rc.0", "v0.2.0-rc.1"},
			prerelease: "rc",
			expect:     "0.2.0-rc.1",
		},
		{
			name:   "skips-invalid",
			tags:   []string{"some-tag", "v0.3.0"},
			expect: "0.3.0",
		},
		{
			name:      "no-tags",
			tags:      nil,
			expectErr: true,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			v, err := SemverLatest(tc.tags, tc.prerelease)
			if tc.expectErr {
				if !errors.Is(err, ErrNoTags) {
					t.Fatalf("expected ErrNoTags, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if v.NE(semver.MustParse(tc.expect)) {
				t.Fatalf("expected %s, got %s", tc.expect, v)
			}
		})
	}
}
