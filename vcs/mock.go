package vcs

import (
	"context"
	"strings"
	"time"

	"github.com/crierhq/crier/model"
)

type Mock struct {
	t     time.Time
	tags  []string
	stats *model.DiffStats

	commits []*model.Commit
}

func NewMock() *Mock {
	return &Mock{
		t: time.Now(),
	}
}

func (m *Mock) SetTags(tags ...string) *Mock {
	m.tags = tags
	return m
}

func (m *Mock) SetCommits(commits ...*model.Commit) *Mock {
	finalCommits := make([]*model.Commit, len(commits))
	for i, commit := range commits {
		c := *commit
		if c.AuthorDate.IsZero() {
			c.AuthorDate = m.t
			m.t = m.t.Add(-time.Minute)
		}
		if c.CommitterDate.IsZero() {
			c.CommitterDate = c.AuthorDate
		}
		finalCommits[i] = &c
	}
	m.commits = finalCommits
	return m
}

func (m *Mock) SetDiffStats(stats *model.DiffStats) *Mock {
	m.stats = stats
	return m
}

func (m *Mock) ReadCommits(ctx context.Context, query string) ([]*model.Commit, error) {
	return m.commits, nil
}

func (m *Mock) ReadDiffStats(ctx context.Context, from, to string) (*model.DiffStats, error) {
	if m.stats == nil {
		return &model.DiffStats{}, nil
	}
	return m.stats, nil
}

func (m *Mock) ReadTags(ctx context.Context, query string) ([]string, error) {
	if query == "" {
		return m.tags, nil
	}
	var tags []string
	for _, t := range m.tags {
		if globMatches(t, query) {
			tags = append(tags, t)
		}
	}
	return tags, nil
}

func globMatches(s string, glob string) bool {
	parts := strings.Split(glob, "*")
	remaining := s
	for {
		if len(parts) == 0 {
			break
		}
		part := parts[0]
		parts = parts[1:]

		if !strings.HasPrefix(remaining, part) {
			return false
		}
		remaining = strings.TrimPrefix(remaining, part)
	}
	if len(glob) > 0 && glob[len(glob)-1] == '*' {
		return true
	}
	return remaining == ""
}
