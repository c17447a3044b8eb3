// Package crossref queries the CrossRef works registry for canonical
// bibliographic metadata by DOI.
package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Kingy2709/pdf-tools/internal/document"
)

const (
	// BaseURL is the CrossRef REST API base URL.
	BaseURL = "https://api.crossref.org"

	// DefaultTimeout bounds the single lookup attempt. There is no retry;
	// resolution degrades to the next source tier on failure.
	DefaultTimeout = 10 * time.Second

	// RateLimit keeps the client inside CrossRef's polite-pool guidance.
	RateLimit = 5.0
)

// Client is a rate-limited HTTP client for the CrossRef REST API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithMailto sets the contact address sent in the User-Agent, which CrossRef
// uses to route requests into the polite pool.
func WithMailto(addr string) ClientOption {
	return func(c *Client) {
		c.mailto = addr
	}
}

// NewClient creates a new CrossRef client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
	}

	if m := os.Getenv("CROSSREF_MAILTO"); m != "" {
		c.mailto = m
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Lookup fetches the canonical work record for a DOI. Any non-200 response
// or malformed body is reported as ErrNotFound or ErrUnavailable; callers
// treat both as "no result".
func (c *Client) Lookup(ctx context.Context, doi string) (*Work, error) {
	if doi == "" {
		return nil, ErrNotFound
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL + "/works/" + url.PathEscape(doi)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var wr worksResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return mapWork(wr.Message), nil
}

func (c *Client) userAgent() string {
	ua := "pdf-tools/1.0"
	if c.mailto != "" {
		ua += " (mailto:" + c.mailto + ")"
	}
	return ua
}

// mapWork converts the API message into a Work. Print year is preferred over
// online, then the issued date.
func mapWork(m workMessage) *Work {
	w := &Work{}
	if len(m.Title) > 0 {
		w.Title = strings.TrimSpace(m.Title[0])
	}
	if len(m.ContainerTitle) > 0 {
		w.Journal = strings.TrimSpace(m.ContainerTitle[0])
	}
	for _, a := range m.Author {
		if a.Family == "" && a.Given == "" {
			continue
		}
		w.Authors = append(w.Authors, document.Author{Family: a.Family, Given: a.Given})
	}
	for _, d := range []dateParts{m.PublishedPrint, m.PublishedOnline, m.Issued} {
		if y := d.year(); y != "" {
			w.Year = y
			break
		}
	}
	return w
}
