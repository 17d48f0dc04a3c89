package fetch

import (
	"context"
	"fmt"

	"product-scraper/pkg/models"
	"product-scraper/pkg/scraperapi"
)

// ProxyFetcher routes requests through the ScraperAPI proxy.
type ProxyFetcher struct {
	Client *scraperapi.Client
	Params *scraperapi.Params
}

func (f *ProxyFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	res, err := f.Client.Get(ctx, url, f.Params, nil)
	if err != nil {
		return nil, err
	}

	page := &Page{
		URL:        url,
		StatusCode: res.StatusCode,
		Body:       res.Body,
		Source:     models.Proxy,
	}

	// error statuses are reported to the caller as they are
	if page.OK() && !isHTML(res.ContentType(), res.Body) {
		return page, fmt.Errorf("%w: proxy returned %q for %s", ErrUnexpectedResponse, res.ContentType(), url)
	}
	return page, nil
}
