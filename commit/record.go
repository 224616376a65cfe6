package commit

import (
	"github.com/crierhq/crier/model"
)

// Record is one semantically classified commit. It is created once by the
// parser and treated as immutable by every consumer.
type Record struct {
	*model.Commit
	CommitType   string   `json:"type"`
	Scope        string   `json:"scope,omitempty"`
	Description  string   `json:"description"`
	Breaking     bool     `json:"breaking,omitempty"`
	BreakingDesc string   `json:"breaking_description,omitempty"`
	Footers      []Footer `json:"footers,omitempty"`
	PRNumber     int      `json:"pr_number,omitempty"`
	PRLink       string   `json:"pr_link,omitempty"`
	IssueRefs    []string `json:"issue_refs,omitempty"`
	CommitLink   string   `json:"commit_link,omitempty"`
}

// Footer is a single trailing annotation like "Reviewed-by: someone" or
// "Closes #45". Order is preserved from the commit body.
type Footer struct {
	Token string `json:"token"`
	Value string `json:"value"`
}

// Footer returns the value of the first footer with the named token.
func (r *Record) Footer(token string) (string, bool) {
	for _, f := range r.Footers {
		if f.Token == token {
			return f.Value, true
		}
	}
	return "", false
}

// ChangeSet is an ordered, deduplicated collection of records for a named
// range. Insertion order follows the history traversal that produced it.
type ChangeSet struct {
	From    string    `json:"from,omitempty"`
	To      string    `json:"to,omitempty"`
	Records []*Record `json:"records"`

	seen map[string]bool
}

func NewChangeSet(from, to string) *ChangeSet {
	return &ChangeSet{
		From: from,
		To:   to,
		seen: make(map[string]bool),
	}
}

// Add appends records, skipping any whose commit ID is already present.
func (cs *ChangeSet) Add(recs ...*Record) {
	if cs.seen == nil {
		cs.seen = make(map[string]bool)
		for _, rec := range cs.Records {
			cs.seen[rec.ID] = true
		}
	}
	for _, rec := range recs {
		if cs.seen[rec.ID] {
			continue
		}
		cs.seen[rec.ID] = true
		cs.Records = append(cs.Records, rec)
	}
}

func (cs *ChangeSet) Len() int { return len(cs.Records) }

// Tally counts records by effective category. A breaking record counts only
// as breaking, regardless of its commit type.
func (cs *ChangeSet) Tally() Evidence {
	var ev Evidence
	for _, rec := range cs.Records {
		switch {
		case rec.Breaking:
			ev.Breaking++
		case rec.CommitType == "feat":
			ev.Features++
		case rec.CommitType == "fix":
			ev.Fixes++
		default:
			ev.Other++
		}
	}
	return ev
}
