package fetch

import (
	"context"
	"errors"
	"mime"
	"strings"

	"product-scraper/pkg/models"
)

// ErrUnexpectedResponse means a fetcher got an answer it cannot hand to the parser,
// e.g. the proxy relayed a plain-text message instead of an HTML document.
var ErrUnexpectedResponse = errors.New("unexpected response")

// Page is one fetched listing page. A non-2xx status is a Page, not an error.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
	Source     models.DataSource
}

func (p *Page) OK() bool {
	return p.StatusCode >= 200 && p.StatusCode < 300
}

// Fetcher retrieves a page. Errors are transport failures only.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (*Page, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (*Page, error) {
	return f(ctx, url)
}

func isHTML(contentType string, body []byte) bool {
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			return mediaType == "text/html" || mediaType == "application/xhtml+xml"
		}
	}
	head := strings.ToLower(strings.TrimSpace(string(body[:min(len(body), 512)])))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}
