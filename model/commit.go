// Package model contains abstract data models.
package model

import "time"

// Commit is one raw entry read from the version control backend. The fields
// are copied verbatim from the backend without transformation; classification
// happens downstream in the commit package.
type Commit struct {
	ID             string `json:"commit"`
	Author         string
	AuthorEmail    string
	AuthorDate     time.Time
	Committer      string
	CommitterEmail string
	CommitterDate  time.Time
	Subject        string
	Body           string
	Refs           []string
}

func (c *Commit) ShortID() string {
	if len(c.ID) < 8 {
		return c.ID
	}
	return c.ID[:8]
}
