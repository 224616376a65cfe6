package model

// DiffStats carries raw file and line change statistics for a commit range.
// It is supplied by the vcs layer; nothing in this package computes it.
type DiffStats struct {
	FilesChanged int      `json:"files_changed"`
	LinesAdded   int      `json:"lines_added"`
	LinesRemoved int      `json:"lines_removed"`
	TouchedPaths []string `json:"touched_paths,omitempty"`
}
