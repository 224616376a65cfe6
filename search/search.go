// Package search builds a queryable in-memory index over a changeset and
// answers keyword, filter, sort, and pagination queries.
package search

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/crierhq/crier/commit"
)

const (
	SortByDate      = "date"
	SortByType      = "type"
	SortByRelevance = "relevance"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// InvalidQueryError is returned for queries that violate the contract, like
// a page below 1. Bad pagination is reported rather than silently defaulted.
type InvalidQueryError struct {
	Reason string
}

func (e InvalidQueryError) Error() string {
	return fmt.Sprintf("search: invalid query: %s", e.Reason)
}

type Query struct {
	Keyword   string    `json:"keyword,omitempty"`
	Types     []string  `json:"types,omitempty"`
	Scopes    []string  `json:"scopes,omitempty"`
	Authors   []string  `json:"authors,omitempty"`
	Since     time.Time `json:"since,omitempty"`
	Until     time.Time `json:"until,omitempty"`
	SortBy    string    `json:"sort_by,omitempty"`
	SortOrder string    `json:"sort_order,omitempty"`
	Page      int       `json:"page"`
	PageSize  int       `json:"page_size"`
}

type Result struct {
	Entries  []*commit.Record `json:"entries"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	HasMore  bool             `json:"has_more"`
}

// Engine answers queries against the most recently built index. BuildIndex
// assembles the new index off to the side and publishes it atomically, so
// readers never observe a half-built index. Single writer, many readers.
type Engine struct {
	mu  sync.RWMutex
	idx *index
}

func New() *Engine {
	return &Engine{idx: buildIndex(commit.NewChangeSet("", ""))}
}

// BuildIndex replaces the engine's index with one reflecting exactly cs.
// It is idempotent: rebuilding from the same changeset yields identical
// search results.
func (e *Engine) BuildIndex(cs *commit.ChangeSet) {
	idx := buildIndex(cs)
	e.mu.Lock()
	e.idx = idx
	e.mu.Unlock()
}

func (e *Engine) Search(q Query) (*Result, error) {
	if q.Page < 1 {
		return nil, InvalidQueryError{Reason: fmt.Sprintf("page must be >= 1, got %d", q.Page)}
	}
	if q.PageSize < 1 {
		return nil, InvalidQueryError{Reason: fmt.Sprintf("page size must be >= 1, got %d", q.PageSize)}
	}
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = SortByDate
	}
	switch sortBy {
	case SortByDate, SortByType, SortByRelevance:
	default:
		return nil, InvalidQueryError{Reason: fmt.Sprintf("unknown sort field %q", q.SortBy)}
	}
	order := q.SortOrder
	if order == "" {
		order = OrderDesc
	}
	switch order {
	case OrderAsc, OrderDesc:
	default:
		return nil, InvalidQueryError{Reason: fmt.Sprintf("unknown sort order %q", q.SortOrder)}
	}

	e.mu.RLock()
	idx := e.idx
	e.mu.RUnlock()

	matches := idx.match(q)
	sortMatches(matches, sortBy, order, strings.ToLower(q.Keyword))

	total := len(matches)
	start := (q.Page - 1) * q.PageSize
	end := start + q.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	entries := make([]*commit.Record, 0, end-start)
	for _, m := range matches[start:end] {
		entries = append(entries, m.rec)
	}
	return &Result{
		Entries:  entries,
		Total:    total,
		Page:     q.Page,
		PageSize: q.PageSize,
		HasMore:  q.Page*q.PageSize < total,
	}, nil
}

type match struct {
	rec  *commit.Record
	pos  int
	blob string
}

// index maps normalized tokens from subject, body, scope, and author name to
// the positions of records containing them. It reflects exactly the
// changeset it was built from and is immutable once published.
type index struct {
	records  []*commit.Record
	blobs    []string
	postings map[string][]int
}

func buildIndex(cs *commit.ChangeSet) *index {
	idx := &index{
		records:  cs.Records,
		blobs:    make([]string, len(cs.Records)),
		postings: make(map[string][]int),
	}
	for i, rec := range cs.Records {
		idx.blobs[i] = strings.ToLower(rec.Subject + "\n" + rec.Body + "\n" + rec.Scope)
		seen := make(map[string]bool)
		for _, tok := range tokenize(rec.Subject, rec.Body, rec.Scope, rec.Author) {
			if seen[tok] {
				continue
			}
			seen[tok] = true
			idx.postings[tok] = append(idx.postings[tok], i)
		}
	}
	return idx
}

func (idx *index) match(q Query) []match {
	keyword := strings.ToLower(q.Keyword)
	var matches []match
	for _, i := range idx.keywordCandidates(keyword) {
		rec := idx.records[i]
		if keyword != "" && !strings.Contains(idx.blobs[i], keyword) {
			continue
		}
		if len(q.Types) > 0 && !oneOf(rec.CommitType, q.Types) {
			continue
		}
		if len(q.Scopes) > 0 && !oneOf(rec.Scope, q.Scopes) {
			continue
		}
		if len(q.Authors) > 0 && !oneOf(rec.Author, q.Authors) {
			continue
		}
		if !q.Since.IsZero() && rec.AuthorDate.Before(q.Since) {
			continue
		}
		if !q.Until.IsZero() && rec.AuthorDate.After(q.Until) {
			continue
		}
		matches = append(matches, match{rec: rec, pos: i, blob: idx.blobs[i]})
	}
	return matches
}

// keywordCandidates narrows the scan using the posting lists when the keyword
// is a single bare token. Substring keywords that cross token boundaries
// (anything with spaces or punctuation) fall back to scanning every record;
// candidates are always re-verified with a substring test either way.
func (idx *index) keywordCandidates(keyword string) []int {
	if keyword == "" || !isBareToken(keyword) {
		all := make([]int, len(idx.records))
		for i := range idx.records {
			all[i] = i
		}
		return all
	}
	seen := make(map[int]bool)
	var cands []int
	for tok, positions := range idx.postings {
		if !strings.Contains(tok, keyword) {
			continue
		}
		for _, i := range positions {
			if seen[i] {
				continue
			}
			seen[i] = true
			cands = append(cands, i)
		}
	}
	sort.Ints(cands)
	return cands
}

func sortMatches(matches []match, sortBy, order, keyword string) {
	if sortBy == SortByRelevance && keyword == "" {
		// no relevance signal without a keyword
		sortBy, order = SortByDate, OrderDesc
	}

	var less func(a, b match) bool
	switch sortBy {
	case SortByType:
		less = func(a, b match) bool {
			if a.rec.CommitType != b.rec.CommitType {
				return a.rec.CommitType < b.rec.CommitType
			}
			return a.pos < b.pos
		}
	case SortByRelevance:
		less = func(a, b match) bool {
			ra, rb := relevance(a, keyword), relevance(b, keyword)
			if ra != rb {
				return ra < rb
			}
			return a.pos < b.pos
		}
	default: // date
		less = func(a, b match) bool {
			if !a.rec.AuthorDate.Equal(b.rec.AuthorDate) {
				return a.rec.AuthorDate.Before(b.rec.AuthorDate)
			}
			return a.pos < b.pos
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if order == OrderDesc {
			return less(matches[j], matches[i])
		}
		return less(matches[i], matches[j])
	})
}

// relevance favors subject hits over body or scope hits.
func relevance(m match, keyword string) int {
	subject := strings.ToLower(m.rec.Subject)
	return strings.Count(subject, keyword)*2 + strings.Count(m.blob, keyword)
}

func tokenize(fields ...string) []string {
	var toks []string
	for _, f := range fields {
		toks = append(toks, strings.FieldsFunc(strings.ToLower(f), func(r rune) bool {
			return !isTokenRune(r)
		})...)
	}
	return toks
}

func oneOf(s string, l []string) bool {
	for _, cand := range l {
		if s == cand {
			return true
		}
	}
	return false
}

func isBareToken(s string) bool {
	for _, r := range s {
		if !isTokenRune(r) {
			return false
		}
	}
	return len(s) > 0
}

func isTokenRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}
