package scrape

import (
	"context"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/jonathan/job-recommender/internal/db"
	"github.com/jonathan/job-recommender/internal/skills"
)

// Salary patterns are tried in order; the first match wins.
var salaryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\$(\d{1,3}(?:,\d{3})*(?:k)?)\s*-\s*\$(\d{1,3}(?:,\d{3})*(?:k)?)`),
	regexp.MustCompile(`(?i)\$(\d{1,3}(?:,\d{3})*(?:k)?)\s*/\s*yr`),
	regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})*(?:k)?)\s*-\s*(\d{1,3}(?:,\d{3})*(?:k)?)\s*USD`),
}

// Embedder generates embeddings for normalized job text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Normalizer converts raw scraped jobs into storable postings.
type Normalizer struct {
	vocabulary *skills.Vocabulary
	embedder   Embedder // nil disables embedding generation
}

// NewNormalizer creates a Normalizer. A nil embedder leaves embeddings unset.
func NewNormalizer(vocabulary *skills.Vocabulary, embedder Embedder) *Normalizer {
	return &Normalizer{vocabulary: vocabulary, embedder: embedder}
}

// Normalize maps a raw job into the unified posting schema. Embedding failures
// are swallowed; the posting is still usable for skill-based scoring.
func (n *Normalizer) Normalize(ctx context.Context, raw RawJob) *db.JobPostingInput {
	description := strings.TrimSpace(raw.Description)
	title := strings.TrimSpace(raw.Title)

	salaryMin, salaryMax := ExtractSalary(description + " " + raw.Salary)
	jobType := DetermineJobType(title + " " + description)
	experienceLevel := DetermineExperienceLevel(title + " " + description)

	location := strings.TrimSpace(raw.Location)
	if location == "" {
		location = "Remote"
	}

	input := &db.JobPostingInput{
		Title:           title,
		Company:         strings.TrimSpace(raw.Company),
		Location:        &location,
		Description:     description,
		JobType:         &jobType,
		ExperienceLevel: &experienceLevel,
		SalaryMin:       salaryMin,
		SalaryMax:       salaryMax,
		SalaryCurrency:  "USD",
		RequiredSkills:  n.vocabulary.Extract(description),
		Source:          raw.Source,
		SourceURL:       raw.SourceURL,
		PostedDate:      ParsePostedDate(raw.Published),
	}
	if raw.SourceURL != "" {
		applicationURL := raw.SourceURL
		input.ApplicationURL = &applicationURL
	}
	if len(raw.Tags) > 0 {
		input.Metadata = map[string]any{"tags": raw.Tags}
	}

	if n.embedder != nil {
		if description != "" {
			if emb, err := n.embedder.Embed(ctx, description); err == nil {
				input.DescriptionEmbedding = emb
			} else {
				log.Printf("[SCRAPE] description embedding failed for %s: %v", raw.SourceURL, err)
			}
		}
		if title != "" {
			if emb, err := n.embedder.Embed(ctx, title); err == nil {
				input.TitleEmbedding = emb
			} else {
				log.Printf("[SCRAPE] title embedding failed for %s: %v", raw.SourceURL, err)
			}
		}
	}

	return input
}

// ExtractSalary pulls a salary range out of free text. The returned values are
// annual USD figures with min <= max; both nil when no pattern matches.
func ExtractSalary(text string) (*float64, *float64) {
	for _, pattern := range salaryPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		minVal, err := parseSalaryValue(match[1])
		if err != nil {
			continue
		}
		maxVal := minVal
		if len(match) > 2 && match[2] != "" {
			if v, err := parseSalaryValue(match[2]); err == nil {
				maxVal = v
			}
		}

		if minVal > maxVal {
			minVal, maxVal = maxVal, minVal
		}
		return &minVal, &maxVal
	}
	return nil, nil
}

// parseSalaryValue parses a figure like "80k" or "120,000".
func parseSalaryValue(value string) (float64, error) {
	value = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(value, ",", ""), "$", ""))
	multiplier := 1.0
	if strings.HasSuffix(strings.ToLower(value), "k") {
		multiplier = 1000
		value = value[:len(value)-1]
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	return v * multiplier, nil
}

// DetermineJobType classifies a posting by keywords, most specific first.
func DetermineJobType(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "intern"):
		return "internship"
	case strings.Contains(lower, "part-time") || strings.Contains(lower, "part time"):
		return "part-time"
	case strings.Contains(lower, "contract") || strings.Contains(lower, "freelance"):
		return "contract"
	default:
		return "full-time"
	}
}

var (
	seniorKeywords = []string{"senior", "lead", "principal", "architect"}
	midKeywords    = []string{"mid", "middle", "intermediate", "2-5", "3-5"}
	entryKeywords  = []string{"junior", "entry", "graduate", "0-2", "1-2"}
)

// DetermineExperienceLevel classifies seniority by keywords; senior wins over
// mid, mid over entry, and the default is mid.
func DetermineExperienceLevel(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range seniorKeywords {
		if strings.Contains(lower, kw) {
			return "senior"
		}
	}
	for _, kw := range midKeywords {
		if strings.Contains(lower, kw) {
			return "mid"
		}
	}
	for _, kw := range entryKeywords {
		if strings.Contains(lower, kw) {
			return "entry"
		}
	}
	return "mid"
}

// ParsePostedDate parses any common date format, returning nil when absent or
// unparseable.
func ParsePostedDate(dateStr string) *time.Time {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return nil
	}
	t, err := dateparse.ParseAny(dateStr)
	if err != nil {
		return nil
	}
	return &t
}
