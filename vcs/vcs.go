// Package vcs abstracts version control systems. Currently just git.
package vcs

import (
	"context"
	"fmt"

	"github.com/crierhq/crier/model"
)

type NotFoundError struct {
	Ref string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("vcs: ref %q not found", e.Ref)
}

// Interface is the boundary to the version control backend. It supplies raw
// commit entries and diff statistics for a range; all classification and
// scoring happens in-process, downstream of this interface.
type Interface interface {
	ReadCommits(ctx context.Context, query string) ([]*model.Commit, error)
	ReadDiffStats(ctx context.Context, from, to string) (*model.DiffStats, error)
	ReadTags(ctx context.Context, query string) ([]string, error)
}
