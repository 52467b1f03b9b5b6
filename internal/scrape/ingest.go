package scrape

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-recommender/internal/db"
	"github.com/jonathan/job-recommender/internal/skills"
)

// Store is the persistence surface the ingest pipeline needs.
type Store interface {
	InsertJobPosting(ctx context.Context, input *db.JobPostingInput) (uuid.UUID, bool, error)
	UpsertSkill(ctx context.Context, name string) (uuid.UUID, error)
	LinkJobSkill(ctx context.Context, jobID, skillID uuid.UUID) error
}

// IngestResult summarizes one ingest run.
type IngestResult struct {
	Source   string   `json:"source"`
	Scraped  int      `json:"scraped"`
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Pipeline scrapes one source, normalizes the results and stores new postings.
type Pipeline struct {
	store      Store
	normalizer *Normalizer
	minDelay   time.Duration
	rssFeeds   []string
}

// NewPipeline creates an ingest pipeline. minDelay throttles each scraper's
// outbound requests.
func NewPipeline(store Store, normalizer *Normalizer, minDelay time.Duration, rssFeeds []string) *Pipeline {
	return &Pipeline{
		store:      store,
		normalizer: normalizer,
		minDelay:   minDelay,
		rssFeeds:   rssFeeds,
	}
}

// scraperFor builds the scraper for a source name.
func (p *Pipeline) scraperFor(source string) (Scraper, error) {
	switch source {
	case "indeed":
		return NewIndeedScraper(p.minDelay), nil
	case "remoteok":
		return NewRemoteOKScraper(p.minDelay), nil
	case "rss":
		return NewRSSScraper(p.minDelay, p.rssFeeds), nil
	default:
		return nil, fmt.Errorf("unknown source: %s (supported: indeed, remoteok, rss)", source)
	}
}

// Run scrapes a source and ingests its postings. Per-posting failures are
// collected, not fatal; duplicates by source URL are counted as skipped.
func (p *Pipeline) Run(ctx context.Context, source string, searchTerms []string) (*IngestResult, error) {
	scraper, err := p.scraperFor(source)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{Source: source}

	rawJobs, err := scraper.Scrape(ctx, searchTerms)
	if err != nil {
		return nil, fmt.Errorf("scraping %s failed: %w", source, err)
	}
	result.Scraped = len(rawJobs)
	log.Printf("[SCRAPE] %s: scraped %d postings for terms %v", source, len(rawJobs), searchTerms)

	for _, raw := range rawJobs {
		if raw.SourceURL == "" {
			result.Skipped++
			continue
		}

		input := p.normalizer.Normalize(ctx, raw)
		jobID, inserted, err := p.store.InsertJobPosting(ctx, input)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", raw.SourceURL, err))
			continue
		}
		if !inserted {
			result.Skipped++
			continue
		}
		result.Inserted++

		p.linkSkills(ctx, jobID, input.RequiredSkills)
	}

	log.Printf("[SCRAPE] %s: inserted %d, skipped %d, errors %d",
		source, result.Inserted, result.Skipped, len(result.Errors))
	return result, nil
}

// linkSkills maintains the skill taxonomy for a new posting. Taxonomy writes
// are best-effort; a failure never blocks ingestion.
func (p *Pipeline) linkSkills(ctx context.Context, jobID uuid.UUID, jobSkills []string) {
	for _, name := range jobSkills {
		key := skills.Normalize(name)
		if key == "" {
			continue
		}
		skillID, err := p.store.UpsertSkill(ctx, key)
		if err != nil {
			log.Printf("[SCRAPE] skill upsert %q failed: %v", key, err)
			continue
		}
		if err := p.store.LinkJobSkill(ctx, jobID, skillID); err != nil {
			log.Printf("[SCRAPE] skill link %q failed: %v", key, err)
		}
	}
}
