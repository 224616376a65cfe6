package commit

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/crierhq/crier/config"
	"github.com/crierhq/crier/model"
)

// subjectRE implements the conventional commit subject grammar:
// type ["(" scope ")"] ["!"] ":" SP description. Scope is delimited by the
// first ")" after the opening "(", there is no balanced-parenthesis scan.
var subjectRE = regexp.MustCompile(`^(?P<type>[A-Za-z0-9]+)(?:\((?P<scope>[^)]*)\))?(?P<bang>!)?:\s+(?P<desc>.+)$`)

var footerRE = regexp.MustCompile(`^(?P<token>BREAKING[ -]CHANGE|[A-Za-z][A-Za-z0-9-]*)(?::\s*(?P<cvalue>.+)| (?P<hvalue>#.+))$`)

var breakingFooterRE = regexp.MustCompile(`^BREAKING[ -]CHANGE:\s*(.*)$`)

var issueRefRE = regexp.MustCompile(`#\d+|\b[A-Z][A-Z0-9]*-\d+\b`)

var prRefRE = regexp.MustCompile(`\(#(\d+)\)`)

var issueFooterTokens = []string{"Closes", "Fixes", "Resolves"}

// Parser converts raw commits into classified records. It is permissive:
// every input yields exactly one record, and ungrammatical subjects degrade
// to CommitType "unknown" with the raw subject preserved as the description.
// Enforcement of type allow-lists and subject length is the lint layer's job,
// not the parser's.
type Parser struct {
	cfg config.Config
}

func NewParser(cfg config.Config) *Parser {
	return &Parser{cfg: cfg}
}

// Parse classifies every commit, in input order. It never drops an entry and
// never fails.
func (p *Parser) Parse(commits []*model.Commit) []*Record {
	recs := make([]*Record, len(commits))
	for i, c := range commits {
		recs[i] = p.parseOne(c)
	}
	return recs
}

func (p *Parser) parseOne(c *model.Commit) *Record {
	rec := &Record{
		Commit:      c,
		CommitType:  TypeUnknown,
		Description: c.Subject,
	}

	bang := false
	if m := subjectRE.FindStringSubmatch(c.Subject); m != nil {
		rec.CommitType = m[subjectRE.SubexpIndex("type")]
		rec.Scope = m[subjectRE.SubexpIndex("scope")]
		rec.Description = m[subjectRE.SubexpIndex("desc")]
		bang = m[subjectRE.SubexpIndex("bang")] != ""
	}

	rec.Footers = parseFooters(c.Body)

	if desc, ok := breakingAnnotation(c.Body); ok {
		rec.Breaking = true
		rec.BreakingDesc = desc
	} else if bang {
		rec.Breaking = true
		rec.BreakingDesc = rec.Description
	}

	rec.IssueRefs = issueRefs(rec.Footers)
	rec.PRNumber = prNumber(c.Subject, rec.Footers)
	return rec
}

// parseFooters collects the trailing block of "Token: value" or "Token #value"
// lines from the body, preserving order.
func parseFooters(body string) []Footer {
	if body == "" {
		return nil
	}
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	var block []Footer
	for i := len(lines) - 1; i >= 0; i-- {
		m := footerRE.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			break
		}
		value := m[footerRE.SubexpIndex("cvalue")]
		if value == "" {
			value = m[footerRE.SubexpIndex("hvalue")]
		}
		block = append(block, Footer{Token: m[footerRE.SubexpIndex("token")], Value: value})
	}

	// walked backwards, restore body order
	for i, j := 0, len(block)-1; i < j; i, j = i+1, j-1 {
		block[i], block[j] = block[j], block[i]
	}
	return block
}

// breakingAnnotation finds the first BREAKING CHANGE / BREAKING-CHANGE
// annotation anywhere in the body. Later annotations are ignored.
func breakingAnnotation(body string) (string, bool) {
	for _, line := range strings.Split(body, "\n") {
		if m := breakingFooterRE.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func issueRefs(footers []Footer) []string {
	var refs []string
	seen := make(map[string]bool)
	for _, f := range footers {
		if !oneOf(f.Token, issueFooterTokens) {
			continue
		}
		for _, ref := range issueRefRE.FindAllString(f.Value, -1) {
			if seen[ref] {
				continue
			}
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

func prNumber(subject string, footers []Footer) int {
	if m := prRefRE.FindStringSubmatch(subject); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	for _, f := range footers {
		if m := prRefRE.FindStringSubmatch(f.Value); m != nil {
			n, _ := strconv.Atoi(m[1])
			return n
		}
	}
	return 0
}

func oneOf(s string, l []string) bool {
	for _, cand := range l {
		if s == cand {
			return true
		}
	}
	return false
}
