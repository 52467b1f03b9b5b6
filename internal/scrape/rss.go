package scrape

import (
	"context"
	"log"
	"time"

	"github.com/mmcdole/gofeed"
)

// defaultFeeds are job-board feeds polled when none are configured.
var defaultFeeds = []string{
	"https://weworkremotely.com/categories/remote-programming-jobs.rss",
	"https://remotive.com/remote-jobs/feed",
}

// RSSScraper pulls job postings from a list of RSS/Atom feeds.
type RSSScraper struct {
	fetcher *Fetcher
	parser  *gofeed.Parser
	feeds   []string
}

// NewRSSScraper creates an RSS scraper. An empty feed list uses the defaults.
func NewRSSScraper(minDelay time.Duration, feeds []string) *RSSScraper {
	if len(feeds) == 0 {
		feeds = defaultFeeds
	}
	return &RSSScraper{
		fetcher: NewFetcher(minDelay),
		parser:  gofeed.NewParser(),
		feeds:   feeds,
	}
}

// Source returns the board identifier.
func (s *RSSScraper) Source() string { return "rss" }

// Scrape fetches every configured feed and filters entries by search terms.
// A failing feed is logged and skipped; the rest still contribute.
func (s *RSSScraper) Scrape(ctx context.Context, searchTerms []string) ([]RawJob, error) {
	var jobs []RawJob
	for _, feedURL := range s.feeds {
		result, err := s.fetcher.Get(ctx, feedURL)
		if err != nil {
			log.Printf("[SCRAPE] rss: feed %s failed: %v", feedURL, err)
			continue
		}

		feed, err := s.parser.ParseString(result.Body)
		if err != nil {
			log.Printf("[SCRAPE] rss: feed %s parse failed: %v", feedURL, err)
			continue
		}

		for _, item := range feed.Items {
			if !matchesTerms(searchTerms, item.Title, item.Description) {
				continue
			}
			jobs = append(jobs, RawJob{
				Title:       item.Title,
				Company:     feedItemCompany(item),
				Description: item.Description,
				SourceURL:   item.Link,
				Source:      "rss",
				Published:   item.Published,
			})
		}
	}
	return jobs, nil
}

// feedItemCompany pulls a company name from the entry author, if present.
func feedItemCompany(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	if len(item.Authors) > 0 && item.Authors[0].Name != "" {
		return item.Authors[0].Name
	}
	return "Unknown"
}
