package scrape

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indeedFixture = `<html><body>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a href="/rc/clk?jk=abc123">Senior Python Developer</a></h2>
  <span data-testid="company-name">Acme Corp</span>
  <div data-testid="text-location">Austin, TX</div>
  <div class="job-snippet">Build data pipelines with Python and Airflow.</div>
</div>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a href="https://www.indeed.com/viewjob?jk=def456">Go Engineer</a></h2>
  <span data-testid="company-name">Widget Inc</span>
</div>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a href="/rc/clk?jk=ghi789">Orphan Posting</a></h2>
</div>
</body></html>`

func TestParseIndeedListings(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(indeedFixture))
	require.NoError(t, err)

	jobs := parseIndeedListings(doc)

	// The card without a company is dropped
	require.Len(t, jobs, 2)

	assert.Equal(t, "Senior Python Developer", jobs[0].Title)
	assert.Equal(t, "Acme Corp", jobs[0].Company)
	assert.Equal(t, "Austin, TX", jobs[0].Location)
	assert.Equal(t, "Build data pipelines with Python and Airflow.", jobs[0].Description)
	assert.Equal(t, "https://www.indeed.com/rc/clk?jk=abc123", jobs[0].SourceURL)
	assert.Equal(t, "indeed", jobs[0].Source)

	// Absolute links pass through unchanged
	assert.Equal(t, "https://www.indeed.com/viewjob?jk=def456", jobs[1].SourceURL)
}

func TestParseIndeedListingsFallbackSelector(t *testing.T) {
	html := `<html><body>
	<div data-jk="xyz">
	  <h2 class="jobTitle"><a href="/j?jk=xyz">DevOps Engineer</a></h2>
	  <span data-testid="company-name">Ops Co</span>
	</div>
	</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	jobs := parseIndeedListings(doc)
	require.Len(t, jobs, 1)
	assert.Equal(t, "DevOps Engineer", jobs[0].Title)
}

func TestParseIndeedListingsEmpty(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, parseIndeedListings(doc))
}
