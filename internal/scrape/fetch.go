// Package scrape provides job-board scrapers and the normalization pipeline
// that turns raw postings into storable job records.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Result holds the raw content from a URL fetch.
type Result struct {
	URL         string
	Body        string
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Fetcher performs rate-limited HTTP fetches on behalf of a scraper.
// Each scraper owns one Fetcher so boards are throttled independently.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewFetcher creates a Fetcher that waits at least minDelay between requests.
func NewFetcher(minDelay time.Duration) *Fetcher {
	limit := rate.Inf
	if minDelay > 0 {
		limit = rate.Every(minDelay)
	}
	return &Fetcher{
		client:    &http.Client{Timeout: DefaultTimeout},
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: DefaultUserAgent,
	}
}

// Get retrieves the content of a URL, honoring the rate limit.
func (f *Fetcher) Get(ctx context.Context, urlStr string) (*Result, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, &Error{URL: urlStr, Message: "rate limit wait canceled", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, "GET", urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/json;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to read response body", Cause: err}
	}

	result := &Result{
		URL:         urlStr,
		Body:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode != http.StatusOK {
		return result, &Error{URL: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	return result, nil
}

// Document fetches a URL and parses it as an HTML document, falling back to a
// headless browser render when the plain response looks JavaScript-gated.
func (f *Fetcher) Document(ctx context.Context, urlStr string) (*goquery.Document, error) {
	result, err := f.Get(ctx, urlStr)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.Body))
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to parse HTML", Cause: err}
	}

	if ShouldUseBrowser(doc.Find("body").Text()) {
		html, berr := WithBrowser(ctx, urlStr, DefaultTimeout)
		if berr != nil {
			// Keep the thin static document rather than failing outright
			return doc, nil
		}
		rendered, perr := goquery.NewDocumentFromReader(strings.NewReader(html))
		if perr != nil {
			return doc, nil
		}
		return rendered, nil
	}

	return doc, nil
}
