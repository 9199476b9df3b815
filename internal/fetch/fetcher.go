package fetch

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"regexp"
	"strings"
	"time"
)

const (
	// maxBodyBytes bounds how much of a page body is read.
	maxBodyBytes = 2 * 1024 * 1024
	// maxTextRunes bounds the plain text handed to the extraction model.
	maxTextRunes = 48000

	userAgent = "Mozilla/5.0 (compatible; nutrition-api/1.0)"
)

var (
	scriptRe  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe   = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	commentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
	tagRe     = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// Client fetches candidate pages and reduces them to plain text. One Client
// is scoped to a single request and reused across that request's candidate
// URLs; Close releases its connections.
type Client struct {
	http *http.Client
}

// NewClient creates a page-fetch client with its own cookie jar.
func NewClient(timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

// PageText fetches a URL and returns its visible text content, bounded in
// size so it fits in an extraction prompt.
func (c *Client) PageText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create page request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read page body: %w", err)
	}

	text := StripHTML(string(body))
	if text == "" {
		return "", fmt.Errorf("page has no text content")
	}
	return text, nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// StripHTML strips markup from an HTML document and collapses whitespace.
func StripHTML(doc string) string {
	doc = scriptRe.ReplaceAllString(doc, " ")
	doc = styleRe.ReplaceAllString(doc, " ")
	doc = commentRe.ReplaceAllString(doc, " ")
	doc = tagRe.ReplaceAllString(doc, " ")
	doc = html.UnescapeString(doc)
	doc = spaceRe.ReplaceAllString(doc, " ")
	doc = strings.TrimSpace(doc)

	runes := []rune(doc)
	if len(runes) > maxTextRunes {
		doc = string(runes[:maxTextRunes])
	}
	return doc
}
