// Package catalog fetches book metadata from the Open Library API.
//
// Lookups are best-effort: callers treat a miss or an API failure as "no
// metadata" and carry on, so a flaky upstream never blocks adding books.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/leafmark/leafmark/internal/config"
)

const userAgent = "Leafmark/1.0 (https://github.com/leafmark/leafmark)"

// SearchLimit caps the number of results returned per search.
const SearchLimit = 10

// Metadata is the minimal record an ISBN lookup can fill in.
type Metadata struct {
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
}

// SearchResult is one row of a catalog search. ISBN prefers the 13-digit
// form when the edition lists several.
type SearchResult struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	ISBN    string `json:"isbn"`
	CoverID *int64 `json:"cover_id"`
}

// Client talks to the Open Library API with a polite request rate.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *requestPacer
}

// requestPacer spaces outgoing calls at least interval apart.
type requestPacer struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func (p *requestPacer) wait() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if since := time.Since(p.lastCall); since < p.interval {
		time.Sleep(p.interval - since)
	}
	p.lastCall = time.Now()
}

// NewClient creates an Open Library client from configuration.
func NewClient(cfg config.OpenLibrary) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultOpenLibraryBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		limiter:    &requestPacer{interval: time.Second},
	}
}

// NormalizeISBN strips hyphens and whitespace from an ISBN.
func NormalizeISBN(isbn string) string {
	return strings.TrimSpace(strings.ReplaceAll(isbn, "-", ""))
}

type editionResponse struct {
	Title   string `json:"title"`
	Authors []struct {
		Key string `json:"key"`
	} `json:"authors"`
}

type authorResponse struct {
	Name string `json:"name"`
}

type searchResponse struct {
	Docs []searchDoc `json:"docs"`
}

type searchDoc struct {
	Title      string   `json:"title"`
	AuthorName []string `json:"author_name"`
	ISBN       []string `json:"isbn"`
	CoverI     *int64   `json:"cover_i"`
}

// FetchByISBN looks up an edition by ISBN. A miss returns (nil, error); the
// caller decides whether that is fatal.
func (c *Client) FetchByISBN(ctx context.Context, isbn string) (*Metadata, error) {
	isbn = NormalizeISBN(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("empty ISBN")
	}

	c.limiter.wait()

	var edition editionResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/isbn/%s.json", c.baseURL, isbn), &edition); err != nil {
		return nil, err
	}

	meta := &Metadata{Title: edition.Title}

	// Author records are referenced by key and need a second lookup.
	if len(edition.Authors) > 0 && edition.Authors[0].Key != "" {
		var author authorResponse
		if err := c.getJSON(ctx, fmt.Sprintf("%s%s.json", c.baseURL, edition.Authors[0].Key), &author); err == nil {
			meta.Author = author.Name
		}
	}

	if meta.Title == "" && meta.Author == "" {
		return nil, fmt.Errorf("no usable metadata for ISBN %s", isbn)
	}
	return meta, nil
}

// Search queries the catalog and returns up to SearchLimit matches.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}

	c.limiter.wait()

	searchURL := fmt.Sprintf("%s/search.json?q=%s&limit=%d",
		c.baseURL, url.QueryEscape(query), SearchLimit)

	var resp searchResponse
	if err := c.getJSON(ctx, searchURL, &resp); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(resp.Docs))
	for _, doc := range resp.Docs {
		result := SearchResult{
			Title:   doc.Title,
			CoverID: doc.CoverI,
		}
		if len(doc.AuthorName) > 0 {
			result.Author = doc.AuthorName[0]
		}
		result.ISBN = pickISBN(doc.ISBN)
		results = append(results, result)
	}
	return results, nil
}

// pickISBN prefers a 13-digit ISBN, falling back to the first listed.
func pickISBN(isbns []string) string {
	for _, candidate := range isbns {
		if len(NormalizeISBN(candidate)) == 13 {
			return candidate
		}
	}
	if len(isbns) > 0 {
		return isbns[0]
	}
	return ""
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, rawURL)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
