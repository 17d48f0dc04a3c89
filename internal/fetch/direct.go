package fetch

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"product-scraper/pkg/models"
)

// DirectFetcher requests the target site without any proxy.
type DirectFetcher struct {
	Http *resty.Client
}

func NewDirectFetcher(userAgent string, timeout time.Duration) *DirectFetcher {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", userAgent)
	return &DirectFetcher{Http: client}
}

func (f *DirectFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	res, err := f.Http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, err
	}

	return &Page{
		URL:        url,
		StatusCode: res.StatusCode(),
		Body:       res.Body(),
		Source:     models.Direct,
	}, nil
}
