package crawler

import (
	"bytes"
	"context"
	"time"

	"product-scraper/internal/fetch"
	"product-scraper/pkg/models"
)

// ListingProcessor implements engine.Processor for one listing page.
type ListingProcessor struct {
	Fetcher fetch.Fetcher
	Parser  *Parser
}

// Process fetches url and extracts its product cards. A non-2xx page yields
// no products and no error, the caller decides what the status means.
func (p *ListingProcessor) Process(ctx context.Context, url string) (models.PageData, []models.Product, error) {
	start := time.Now()
	page, err := p.Fetcher.Fetch(ctx, url)
	data := models.PageData{URL: url, LoadTime: time.Since(start)}
	if err != nil {
		return data, nil, err
	}

	data.StatusCode = page.StatusCode
	data.Source = page.Source
	if !page.OK() {
		return data, nil, nil
	}

	products, err := p.Parser.Extract(bytes.NewReader(page.Body))
	if err != nil {
		return data, nil, err
	}
	data.Products = len(products)

	return data, products, nil
}
