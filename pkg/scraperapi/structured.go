package scraperapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var ErrNoASINs = errors.New("scraperapi: at least one asin is required")

// Locale narrows a structured query to an Amazon or Google marketplace.
// Empty fields are left to the API defaults.
type Locale struct {
	Country string
	TLD     string
}

func (l Locale) values() url.Values {
	v := url.Values{}
	if l.Country != "" {
		v.Set("country", l.Country)
	}
	if l.TLD != "" {
		v.Set("tld", l.TLD)
	}
	return v
}

// structured calls a /structured/... endpoint and decodes the JSON answer,
// an object or an array depending on the endpoint.
func (c *Client) structured(ctx context.Context, endpoint string, query url.Values) (any, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		SetQueryParam("api_key", c.apiKey).
		Get("/structured/" + endpoint)
	if err != nil {
		return nil, fmt.Errorf("scraperapi: %s: %w", endpoint, err)
	}
	if res.IsError() {
		return nil, &APIError{
			StatusCode: res.StatusCode(),
			Message:    strings.TrimSpace(res.String()),
		}
	}

	var out any
	if err := json.Unmarshal(res.Body(), &out); err != nil {
		return nil, fmt.Errorf("scraperapi: decode %s: %w", endpoint, err)
	}
	return out, nil
}

type Amazon struct{ client *Client }

func (a *Amazon) Product(ctx context.Context, asin string, locale Locale) (any, error) {
	q := locale.values()
	q.Set("asin", asin)
	return a.client.structured(ctx, "amazon/product", q)
}

func (a *Amazon) Search(ctx context.Context, query string, locale Locale) (any, error) {
	q := locale.values()
	q.Set("query", query)
	return a.client.structured(ctx, "amazon/search", q)
}

func (a *Amazon) Offers(ctx context.Context, asin string, locale Locale) (any, error) {
	q := locale.values()
	q.Set("asin", asin)
	return a.client.structured(ctx, "amazon/offers", q)
}

func (a *Amazon) Review(ctx context.Context, asin string, locale Locale) (any, error) {
	q := locale.values()
	q.Set("asin", asin)
	return a.client.structured(ctx, "amazon/review", q)
}

// Prices looks up several products at once; asins are sent comma separated.
func (a *Amazon) Prices(ctx context.Context, asins []string, locale Locale) (any, error) {
	if len(asins) == 0 {
		return nil, ErrNoASINs
	}
	q := locale.values()
	q.Set("asins", strings.Join(asins, ","))
	return a.client.structured(ctx, "amazon/prices", q)
}

type Google struct{ client *Client }

func (g *Google) Search(ctx context.Context, query string, locale Locale) (any, error) {
	return g.query(ctx, "google/search", query, locale)
}

func (g *Google) News(ctx context.Context, query string, locale Locale) (any, error) {
	return g.query(ctx, "google/news", query, locale)
}

func (g *Google) Jobs(ctx context.Context, query string, locale Locale) (any, error) {
	return g.query(ctx, "google/jobs", query, locale)
}

func (g *Google) Shopping(ctx context.Context, query string, locale Locale) (any, error) {
	return g.query(ctx, "google/shopping", query, locale)
}

func (g *Google) query(ctx context.Context, endpoint, query string, locale Locale) (any, error) {
	q := locale.values()
	q.Set("query", query)
	return g.client.structured(ctx, endpoint, q)
}

type Walmart struct{ client *Client }

// Search runs a Walmart search. page 0 leaves paging to the API.
func (w *Walmart) Search(ctx context.Context, query string, page int) (any, error) {
	q := url.Values{"query": {query}}
	setPage(q, page)
	return w.client.structured(ctx, "walmart/search", q)
}

func (w *Walmart) Category(ctx context.Context, category string, page int) (any, error) {
	q := url.Values{"category": {category}}
	setPage(q, page)
	return w.client.structured(ctx, "walmart/category", q)
}

func (w *Walmart) Product(ctx context.Context, productID string) (any, error) {
	return w.client.structured(ctx, "walmart/product", url.Values{"product_id": {productID}})
}

func setPage(q url.Values, page int) {
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
}
