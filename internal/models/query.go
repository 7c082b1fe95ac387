package models

import "strings"

// SearchQuery is a free-text search, optionally restricted to one census year.
type SearchQuery struct {
	Term string     `json:"search"`
	Year CensusYear `json:"year,omitempty"`
}

// Blank reports whether the term is empty or whitespace only.
func (q *SearchQuery) Blank() bool {
	return strings.TrimSpace(q.Term) == ""
}

// Validate checks the year of a per-year query.
func (q *SearchQuery) Validate() error {
	if !q.Year.Valid() {
		return ErrUnknownYear
	}
	return nil
}
