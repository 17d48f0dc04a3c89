package fetch

import (
	"context"
	"errors"

	logx "product-scraper/pkg/logger"
)

// FallbackFetcher asks Primary first and retries the same URL once with Secondary
// when Primary answers with ErrUnexpectedResponse. Other errors are returned as is.
type FallbackFetcher struct {
	Primary   Fetcher
	Secondary Fetcher
}

func (f *FallbackFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	page, err := f.Primary.Fetch(ctx, url)
	if err == nil || !errors.Is(err, ErrUnexpectedResponse) {
		return page, err
	}

	logx.Warn().Err(err).Str("url", url).Msg("primary fetcher returned an unexpected response, falling back")
	return f.Secondary.Fetch(ctx, url)
}
