package scrape

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	indeedBaseURL     = "https://www.indeed.com/jobs"
	indeedMaxPages    = 2
	indeedResultsStep = 10
)

// IndeedScraper scrapes Indeed search result pages.
type IndeedScraper struct {
	fetcher *Fetcher
	baseURL string
}

// NewIndeedScraper creates an Indeed scraper with its own rate-limited fetcher.
func NewIndeedScraper(minDelay time.Duration) *IndeedScraper {
	return &IndeedScraper{
		fetcher: NewFetcher(minDelay),
		baseURL: indeedBaseURL,
	}
}

// Source returns the board identifier.
func (s *IndeedScraper) Source() string { return "indeed" }

// Scrape fetches up to two result pages per search term.
func (s *IndeedScraper) Scrape(ctx context.Context, searchTerms []string) ([]RawJob, error) {
	var all []RawJob
	for _, term := range searchTerms {
		jobs := s.scrapeTerm(ctx, term)
		all = append(all, jobs...)
	}
	return all, nil
}

func (s *IndeedScraper) scrapeTerm(ctx context.Context, term string) []RawJob {
	var jobs []RawJob
	for page := 0; page < indeedMaxPages; page++ {
		params := url.Values{}
		params.Set("q", term)
		params.Set("start", fmt.Sprintf("%d", page*indeedResultsStep))
		pageURL := s.baseURL + "?" + params.Encode()

		doc, err := s.fetcher.Document(ctx, pageURL)
		if err != nil {
			log.Printf("[SCRAPE] indeed: page %d for %q failed: %v", page, term, err)
			continue
		}

		pageJobs := parseIndeedListings(doc)
		jobs = append(jobs, pageJobs...)

		// Indeed stops paginating once a page comes back empty
		if len(pageJobs) == 0 {
			break
		}
	}
	return jobs
}

// parseIndeedListings extracts job cards from a search results page.
// Indeed changes its markup often, so several selectors are tried in order.
func parseIndeedListings(doc *goquery.Document) []RawJob {
	cards := doc.Find("div.job_seen_beacon")
	if cards.Length() == 0 {
		cards = doc.Find("div[data-jk]")
	}
	if cards.Length() == 0 {
		cards = doc.Find("a[data-jk]")
	}

	var jobs []RawJob
	cards.Each(func(_ int, card *goquery.Selection) {
		titleLink := card.Find("h2.jobTitle a").First()
		title := strings.TrimSpace(titleLink.Text())
		company := strings.TrimSpace(card.Find(`span[data-testid="company-name"]`).First().Text())
		location := strings.TrimSpace(card.Find(`div[data-testid="text-location"]`).First().Text())
		snippet := strings.TrimSpace(card.Find("div.job-snippet").First().Text())

		jobURL := ""
		if href, ok := titleLink.Attr("href"); ok && href != "" {
			if strings.HasPrefix(href, "/") {
				jobURL = "https://www.indeed.com" + href
			} else {
				jobURL = href
			}
		}

		// Cards without both title and company are ads or malformed markup
		if title == "" || company == "" {
			return
		}

		jobs = append(jobs, RawJob{
			Title:       title,
			Company:     company,
			Location:    location,
			Description: snippet,
			SourceURL:   jobURL,
			Source:      "indeed",
		})
	})
	return jobs
}
