package scrape

import (
	"context"
	"strings"
)

// RawJob is a job posting as scraped from a board, before normalization.
type RawJob struct {
	Title       string
	Company     string
	Location    string
	Description string
	SourceURL   string
	Source      string
	Salary      string   // free-text salary, if the board exposes one
	Published   string   // free-text posted date, if the board exposes one
	Tags        []string // board-provided tags, if any
}

// Scraper pulls raw job postings from a single board.
type Scraper interface {
	// Scrape returns postings matching any of the search terms.
	// An empty term list means no filtering.
	Scrape(ctx context.Context, searchTerms []string) ([]RawJob, error)
	// Source returns the board identifier (indeed, remoteok, rss).
	Source() string
}

// matchesTerms reports whether any search term appears in one of the fields,
// case-insensitively. No terms means everything matches.
func matchesTerms(terms []string, fields ...string) bool {
	if len(terms) == 0 {
		return true
	}
	for _, term := range terms {
		for _, field := range fields {
			if containsFold(field, term) {
				return true
			}
		}
	}
	return false
}

// containsFold reports whether substr appears in s, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
