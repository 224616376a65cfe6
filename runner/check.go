package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/crierhq/crier/commit"
	"github.com/crierhq/crier/model"
)

// CheckFailure collects lint findings for one or more commits. The parser is
// permissive, so enforcement of the allow-lists lives here, as a separate
// optional pass.
type CheckFailure struct {
	Failures []FailureEntry
}

type FailureEntry struct {
	rawLine     string
	commitID    string
	commitTitle string
	err         error
}

type failuresByCommit struct {
	commits []CheckFailure
}

func (cf CheckFailure) Error() string {
	return fmt.Sprintf("%d check(s) failed", len(cf.Failures))
}

func (cf CheckFailure) Is(other error) bool {
	_, ok := other.(CheckFailure)
	return ok
}

func (cf CheckFailure) WriteFailure(w io.Writer) error {
	if len(cf.Failures) == 0 {
		return nil
	}
	bw := bufio.NewWriter(w)

	byCommit := failuresByCommit{}
	for _, failure := range cf.Failures {
		foundPrev := false
		for i, c := range byCommit.commits {
			match := false
			for _, prevFailure := range c.Failures {
				if failure.commitID != "" && prevFailure.commitID != "" && failure.commitID == prevFailure.commitID {
					match = true
					break
				}
				if failure.commitTitle != "" && prevFailure.commitTitle != "" && failure.commitTitle == prevFailure.commitTitle {
					match = true
					break
				}
			}
			if match {
				foundPrev = true
				byCommit.commits[i].Failures = append(c.Failures, failure)
			}
		}

		if !foundPrev {
			byCommit.commits = append(byCommit.commits, CheckFailure{Failures: []FailureEntry{failure}})
		}
	}

	for _, c := range byCommit.commits {
		if len(c.Failures) == 0 {
			continue
		}
		title := c.Failures[0].commitTitle
		if title == "" {
			title = c.Failures[0].rawLine
		}
		bw.WriteString(title)
		bw.WriteString("\n")
		for _, failure := range c.Failures {
			bw.WriteString("  ")
			bw.WriteString(failure.err.Error())
			bw.WriteString("\n")
		}
	}

	return bw.Flush()
}

// CheckCommitSubjects lints raw commit messages (subject plus optional body).
func (r *Runner) CheckCommitSubjects(ctx context.Context, commits []string) ([]*commit.Record, error) {
	var mcs []*model.Commit
	for _, c := range commits {
		mcs = append(mcs, parseRawMessage(c))
	}
	recs := r.parser.Parse(mcs)

	var failures []FailureEntry
	for _, rec := range recs {
		failures = append(failures, r.checkRecord(rec)...)
	}
	if len(failures) > 0 {
		return nil, CheckFailure{Failures: failures}
	}
	return recs, nil
}

// CheckReadCommits lints a single raw message read from rdr, typically stdin.
func (r *Runner) CheckReadCommits(ctx context.Context, rdr io.Reader) ([]*commit.Record, error) {
	raw, err := io.ReadAll(rdr)
	if err != nil {
		return nil, err
	}
	return r.CheckCommitSubjects(ctx, []string{string(raw)})
}

// CheckCommitsFromGit lints every commit in the range.
func (r *Runner) CheckCommitsFromGit(ctx context.Context, from, to string) ([]*commit.Record, error) {
	cs, err := r.BuildChangeSet(ctx, from, to)
	if err != nil {
		return nil, err
	}
	var failures []FailureEntry
	for _, rec := range cs.Records {
		failures = append(failures, r.checkRecord(rec)...)
	}
	if len(failures) > 0 {
		return nil, CheckFailure{Failures: failures}
	}
	return cs.Records, nil
}

func (r *Runner) checkRecord(rec *commit.Record) []FailureEntry {
	var failures []FailureEntry
	fail := func(err error) {
		failures = append(failures, FailureEntry{commitID: rec.ID, commitTitle: rec.Subject, err: err})
	}

	if rec.CommitType == commit.TypeUnknown {
		fail(errors.New("subject does not follow type(scope): description"))
	} else if !r.cfg.KnownType(rec.CommitType) {
		fail(fmt.Errorf("commit type %q is disallowed", rec.CommitType))
	}
	if rec.Scope != "" && len(r.cfg.AllowedScopes) > 0 && !inStrs(rec.Scope, r.cfg.AllowedScopes) {
		fail(fmt.Errorf("scope %q is disallowed", rec.Scope))
	}
	if max := r.cfg.MaxSubjectLength; max > 0 && len(rec.Subject) > max {
		fail(fmt.Errorf("subject is %d characters long, max is %d", len(rec.Subject), max))
	}
	return failures
}

// parseRawMessage splits a raw commit message into subject and body,
// dropping comment lines the way git commit does.
func parseRawMessage(s string) *model.Commit {
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return &model.Commit{Subject: s}
	}
	rest := lines[1:]
	for len(rest) > 0 && strings.TrimSpace(rest[0]) == "" {
		rest = rest[1:]
	}
	var cleaned []string
	for _, line := range rest {
		if strings.HasPrefix(line, "#") {
			continue
		}
		cleaned = append(cleaned, line)
	}
	body := strings.Join(cleaned, "\n")
	return &model.Commit{Subject: lines[0], Body: body}
}

func inStrs(s string, cands []string) bool {
	for _, cand := range cands {
		if s == cand {
			return true
		}
	}
	return false
}
