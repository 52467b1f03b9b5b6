package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const remoteOKAPIURL = "https://remoteok.com/api"

// remoteOKJob mirrors the fields of interest in RemoteOK's public API.
// The first array element is a legal notice without an ID and is skipped.
type remoteOKJob struct {
	ID          json.Number `json:"id"`
	Position    string      `json:"position"`
	Company     string      `json:"company"`
	Description string      `json:"description"`
	URL         string      `json:"url"`
	Date        string      `json:"date"`
	Salary      string      `json:"salary"`
	Tags        []string    `json:"tags"`
}

// RemoteOKScraper pulls remote jobs from RemoteOK's public JSON API.
type RemoteOKScraper struct {
	fetcher *Fetcher
	apiURL  string
}

// NewRemoteOKScraper creates a RemoteOK scraper with its own rate-limited fetcher.
func NewRemoteOKScraper(minDelay time.Duration) *RemoteOKScraper {
	return &RemoteOKScraper{
		fetcher: NewFetcher(minDelay),
		apiURL:  remoteOKAPIURL,
	}
}

// Source returns the board identifier.
func (s *RemoteOKScraper) Source() string { return "remoteok" }

// Scrape fetches the full API listing and filters by search terms.
func (s *RemoteOKScraper) Scrape(ctx context.Context, searchTerms []string) ([]RawJob, error) {
	result, err := s.fetcher.Get(ctx, s.apiURL)
	if err != nil {
		return nil, fmt.Errorf("remoteok fetch failed: %w", err)
	}

	var entries []remoteOKJob
	if err := json.Unmarshal([]byte(result.Body), &entries); err != nil {
		return nil, fmt.Errorf("remoteok response parse failed: %w", err)
	}

	var jobs []RawJob
	for _, entry := range entries {
		if entry.ID.String() == "" || entry.Position == "" {
			continue
		}
		if !matchesTerms(searchTerms, entry.Position, entry.Description) {
			continue
		}

		sourceURL := entry.URL
		if sourceURL == "" {
			sourceURL = "https://remoteok.com/remote-jobs/" + entry.ID.String()
		}

		jobs = append(jobs, RawJob{
			Title:       entry.Position,
			Company:     entry.Company,
			Location:    "Remote",
			Description: entry.Description,
			SourceURL:   sourceURL,
			Source:      "remoteok",
			Salary:      entry.Salary,
			Published:   entry.Date,
			Tags:        entry.Tags,
		})
	}
	return jobs, nil
}
