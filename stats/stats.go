// Package stats aggregates a changeset into frequency, contributor, and type
// distributions.
package stats

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/crierhq/crier/commit"
)

type Stats struct {
	Commits int64
	Counts  map[string][]*statCount
}

// Collect builds distributions over a changeset: commit type, scope, author,
// and month (YYYY-MM of the author date) buckets.
func Collect(cs *commit.ChangeSet) *Stats {
	stats := &Stats{
		Commits: int64(cs.Len()),
		Counts:  make(map[string][]*statCount),
	}
	for _, rec := range cs.Records {
		stats.Add("commit_type", rec.CommitType, 1)
		stats.Add("scope", rec.Scope, 1)
		stats.Add("author", rec.Author, 1)
		if !rec.AuthorDate.IsZero() {
			stats.Add("month", rec.AuthorDate.Format("2006-01"), 1)
		}
	}
	return stats
}

func (s *Stats) Add(bucket, name string, n int64) {
	counts := s.Counts[bucket]
	count, found := s.findCount(name, counts)
	if !found {
		counts = append(counts, count)
	}
	count.Add(n)

	s.Counts[bucket] = counts
}

// Count returns the count for name within bucket, or zero.
func (s *Stats) Count(bucket, name string) int64 {
	count, found := s.findCount(name, s.Counts[bucket])
	if !found {
		return 0
	}
	return count.n
}

func (s *Stats) findCount(name string, counts []*statCount) (*statCount, bool) {
	for _, c := range counts {
		if c.label == name {
			return c, true
		}
	}
	return &statCount{label: name}, false
}

func (s *Stats) sortedBuckets() []string {
	buckets := make([]string, len(s.Counts))
	i := 0
	for name := range s.Counts {
		buckets[i] = name
		i++
	}
	sort.Strings(buckets)
	return buckets
}

type statCount struct {
	label string
	n     int64
}

func (c *statCount) Add(n int64) {
	c.n += n
}

func (s *Stats) TextSummary(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(fmt.Sprintf("%d commits\n\n", s.Commits))

	buckets := s.sortedBuckets()
	for _, name := range buckets {
		counts := s.Counts[name]
		sort.SliceStable(counts, func(i, j int) bool {
			return counts[i].n > counts[j].n
		})
		bw.WriteString(fmt.Sprintf("%s:\n", toTitle(name)))
		for _, count := range counts {
			label := count.label
			if label == "" {
				label = "n/a"
			}
			bw.WriteString(fmt.Sprintf("  %20s\t\t%d\n", label, count.n))
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

var nonAlphaRE = regexp.MustCompile(`[^A-Za-z]`)

var titleCaser = cases.Title(language.English)

func toTitle(s string) string {
	s = nonAlphaRE.ReplaceAllLiteralString(s, " ")
	return titleCaser.String(s)
}
