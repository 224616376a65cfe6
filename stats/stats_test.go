package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/crierhq/crier/commit"
	"github.com/crierhq/crier/config"
	"github.com/crierhq/crier/model"
)

func testChangeSet(t *testing.T) *commit.ChangeSet {
	t.Helper()
	tio, _, _ := config.MockTermIO("")
	cfg := config.NewWithTerminalIO(nil, &tio)
	p := commit.NewParser(cfg)

	date := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}

	recs := p.Parse([]*model.Commit{
		{ID: "a0000000", Subject: "feat(api): add search", Author: "ana", AuthorDate: date("2023-01-10")},
		{ID: "b0000000", Subject: "fix(api): handle nil query", Author: "ana", AuthorDate: date("2023-01-12")},
		{ID: "c0000000", Subject: "fix(store): flush on close", Author: "bob", AuthorDate: date("2023-02-01")},
		{ID: "d0000000", Subject: "not conventional", Author: "bob", AuthorDate: date("2023-02-02")},
	})
	cs := commit.NewChangeSet("v0.1.0", "HEAD")
	cs.Add(recs...)
	return cs
}

func TestCollect(t *testing.T) {
	stats := Collect(testChangeSet(t))

	if stats.Commits != 4 {
		t.Fatalf("expected 4 commits, got %d", stats.Commits)
	}

	expectBuckets := []string{"commit_type", "scope", "author", "month"}
	if len(stats.Counts) != len(expectBuckets) {
		t.Fatalf("expected %d buckets, got %d", len(expectBuckets), len(stats.Counts))
	}
	for _, bucket := range expectBuckets {
		if _, ok := stats.Counts[bucket]; !ok {
			t.Errorf("expected %q bucket", bucket)
		}
	}

	tcs := []struct {
		bucket string
		name   string
		expect int64
	}{
		{"commit_type", "fix", 2},
		{"commit_type", "feat", 1},
		{"commit_type", commit.TypeUnknown, 1},
		{"scope", "api", 2},
		{"scope", "store", 1},
		{"author", "ana", 2},
		{"author", "bob", 2},
		{"month", "2023-01", 2},
		{"month", "2023-02", 2},
	}
	for _, tc := range tcs {
		if got := stats.Count(tc.bucket, tc.name); got != tc.expect {
			t.Errorf("%s/%s: expected %d, got %d", tc.bucket, tc.name, tc.expect, got)
		}
	}
}

func TestTextSummary(t *testing.T) {
	stats := Collect(testChangeSet(t))

	b := &bytes.Buffer{}
	if err := stats.TextSummary(b); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	t.Logf("stats output:\n%s", out)

	if !strings.HasPrefix(out, "4 commits\n") {
		t.Errorf("expected summary to start with commit count, got %q", out)
	}
	for _, expect := range []string{"Commit Type:", "Scope:", "Author:", "Month:", "n/a"} {
		if !strings.Contains(out, expect) {
			t.Errorf("expected summary to contain %q", expect)
		}
	}
}
