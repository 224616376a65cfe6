package runner

import (
	"context"
	"testing"

	"github.com/crierhq/crier/config"
	"github.com/crierhq/crier/model"
	"github.com/crierhq/crier/search"
	"github.com/crierhq/crier/vcs"
)

func newTestRunner(t testing.TB, cfg *config.Config, m *vcs.Mock) *Runner {
	t.Helper()
	tio, _, _ := config.MockTermIO("")
	r, err := New(config.NewWithTerminalIO(cfg, &tio), m)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestSuggestFromLatestTag(t *testing.T) {
	m := vcs.NewMock().
		SetTags("v0.9.0", "v1.2.3", "v1.2.3-rc.1", "not-a-tag").
		SetCommits(
			&model.Commit{ID: "aaaa0001", Subject: "feat(api): add export endpoint"},
			&model.Commit{ID: "aaaa0002", Subject: "fix(api): nil response on empty export"},
		)
	r := newTestRunner(t, nil, m)

	res, err := r.Suggest(context.Background(), "", "v1.2.3", "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Recommended == nil {
		t.Fatal("expected a recommendation")
	}
	if v := res.Recommended.Version.String(); v != "1.3.0" {
		t.Errorf("expected version 1.3.0, got %s", v)
	}
	if res.Recommended.BumpName != "minor" {
		t.Errorf("expected minor bump, got %s", res.Recommended.BumpName)
	}
}

func TestSuggestNoTags(t *testing.T) {
	m := vcs.NewMock().SetCommits(
		&model.Commit{ID: "bbbb0001", Subject: "fix: off by one in pager"},
	)
	r := newTestRunner(t, nil, m)

	res, err := r.Suggest(context.Background(), "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if v := res.Recommended.Version.String(); v != "0.0.1" {
		t.Errorf("expected version 0.0.1, got %s", v)
	}
}

func TestSuggestExplicitBaseline(t *testing.T) {
	m := vcs.NewMock().
		SetTags("v9.9.9").
		SetCommits(
			&model.Commit{ID: "cccc0001", Subject: "feat!: drop the v1 wire format"},
		)
	r := newTestRunner(t, nil, m)

	res, err := r.Suggest(context.Background(), "2.0.0", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if v := res.Recommended.Version.String(); v != "3.0.0" {
		t.Errorf("expected version 3.0.0, got %s", v)
	}
}

func TestRisk(t *testing.T) {
	m := vcs.NewMock().
		SetCommits(
			&model.Commit{ID: "dddd0001", Subject: "fix(auth): patch token injection vulnerability"},
		).
		SetDiffStats(&model.DiffStats{
			FilesChanged: 3,
			LinesAdded:   120,
			LinesRemoved: 40,
			TouchedPaths: []string{"auth/token.go", "docs/README.md"},
		})
	cfg := &config.Config{CoreModulePatterns: []string{"auth/*"}}
	r := newTestRunner(t, cfg, m)

	a, err := r.Risk(context.Background(), "v1.0.0", "")
	if err != nil {
		t.Fatal(err)
	}
	// core module (20) + security keyword (10) + volume (1)
	if a.Score != 31 {
		t.Errorf("expected score 31, got %d (factors: %v)", a.Score, a.Factors)
	}
	if len(a.AffectedModules) != 1 || a.AffectedModules[0] != "auth/token.go" {
		t.Errorf("unexpected affected modules: %v", a.AffectedModules)
	}
}

func TestStats(t *testing.T) {
	m := vcs.NewMock().SetCommits(
		&model.Commit{ID: "eeee0001", Subject: "feat(ui): dark mode", Author: "alice"},
		&model.Commit{ID: "eeee0002", Subject: "fix(ui): contrast ratio", Author: "alice"},
		&model.Commit{ID: "eeee0003", Subject: "fix(api): 500 on empty body", Author: "bob"},
	)
	r := newTestRunner(t, nil, m)

	st, err := r.Stats(context.Background(), "", "")
	if err != nil {
		t.Fatal(err)
	}
	if st.Commits != 3 {
		t.Errorf("expected 3 commits, got %d", st.Commits)
	}
	if n := st.Count("commit_type", "fix"); n != 2 {
		t.Errorf("expected 2 fixes, got %d", n)
	}
	if n := st.Count("author", "alice"); n != 2 {
		t.Errorf("expected 2 commits by alice, got %d", n)
	}
	if n := st.Count("scope", "ui"); n != 2 {
		t.Errorf("expected 2 ui commits, got %d", n)
	}
}

func TestSearch(t *testing.T) {
	m := vcs.NewMock().SetCommits(
		&model.Commit{ID: "ffff0001", Subject: "feat(search): phrase queries"},
		&model.Commit{ID: "ffff0002", Subject: "fix(search): empty query panic"},
		&model.Commit{ID: "ffff0003", Subject: "docs: search examples"},
	)
	r := newTestRunner(t, nil, m)

	res, err := r.Search(context.Background(), "", "", search.Query{
		Keyword:  "search",
		Types:    []string{"fix"},
		Page:     1,
		PageSize: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 1 {
		t.Fatalf("expected 1 result, got %d", res.Total)
	}
	if res.Entries[0].ID != "ffff0002" {
		t.Errorf("unexpected entry: %+v", res.Entries[0])
	}
}

func TestRangeQuery(t *testing.T) {
	tcs := []struct {
		from   string
		to     string
		expect string
	}{
		{"", "", "HEAD"},
		{"", "main", "main"},
		{"v1.0.0", "", "v1.0.0..HEAD"},
		{"v1.0.0", "v2.0.0", "v1.0.0..v2.0.0"},
	}

	for _, tc := range tcs {
		if got := rangeQuery(tc.from, tc.to); got != tc.expect {
			t.Errorf("rangeQuery(%q, %q) = %q, expected %q", tc.from, tc.to, got, tc.expect)
		}
	}
}
