// Package scraperapi is a thin client for the ScraperAPI proxy endpoint.
//
// Proxy calls are a GET/POST/PUT against the API root with the api_key and the
// target url as query parameters; the proxy fetches the target and relays the
// response. The Amazon, Google and Walmart structured endpoints return decoded
// JSON. The async jobs API is not covered.
package scraperapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://api.scraperapi.com"
	DefaultTimeout = 55 * time.Second
)

var ErrMissingAPIKey = errors.New("scraperapi: api key is empty")

// APIError is returned when the API itself rejects a call, e.g. a bad key.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("scraperapi: status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	apiKey string
	Http   *resty.Client

	Amazon  *Amazon
	Google  *Google
	Walmart *Walmart
}

type Option func(*resty.Client)

func WithBaseURL(baseURL string) Option {
	return func(c *resty.Client) { c.SetBaseURL(strings.TrimRight(baseURL, "/")) }
}

func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

// WithRetries enables resty retries on transport errors and 5xx answers.
func WithRetries(n int) Option {
	return func(c *resty.Client) {
		c.SetRetryCount(n)
		c.AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	}
}

func WithUserAgent(ua string) Option {
	return func(c *resty.Client) { c.SetHeader("User-Agent", ua) }
}

func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client := resty.New()
	client.SetBaseURL(DefaultBaseURL)
	client.SetTimeout(DefaultTimeout)
	for _, opt := range opts {
		opt(client)
	}

	c := &Client{apiKey: apiKey, Http: client}
	c.Amazon = &Amazon{client: c}
	c.Google = &Google{client: c}
	c.Walmart = &Walmart{client: c}
	return c, nil
}

// Response is the proxied answer of the target site.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

func (r *Response) String() string {
	return string(r.Body)
}

func (c *Client) Get(ctx context.Context, target string, params *Params, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodGet, target, nil, params, headers)
}

func (c *Client) Post(ctx context.Context, target string, body []byte, params *Params, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodPost, target, body, params, headers)
}

func (c *Client) Put(ctx context.Context, target string, body []byte, params *Params, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodPut, target, body, params, headers)
}

func (c *Client) do(
	ctx context.Context,
	method, target string,
	body []byte,
	params *Params,
	headers map[string]string,
) (*Response, error) {
	if target == "" {
		return nil, fmt.Errorf("scraperapi: empty target url")
	}

	query := params.Values()
	query.Set("api_key", c.apiKey)
	query.Set("url", target)

	req := c.Http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		SetHeaders(headers)
	if body != nil {
		req.SetBody(body)
	}

	res, err := req.Execute(method, "/")
	if err != nil {
		return nil, fmt.Errorf("scraperapi: %s %s: %w", method, target, err)
	}

	return &Response{
		StatusCode: res.StatusCode(),
		Header:     res.Header(),
		Body:       res.Body(),
	}, nil
}

// Account is the usage summary of the API key.
type Account struct {
	ConcurrentRequests int    `json:"concurrentRequests"`
	RequestCount       int    `json:"requestCount"`
	FailedRequestCount int    `json:"failedRequestCount"`
	RequestLimit       int    `json:"requestLimit"`
	ConcurrencyLimit   int    `json:"concurrencyLimit"`
	SubscriptionDate   string `json:"subscriptionDate,omitempty"`
}

// Remaining returns how many requests are left in the current period.
func (a *Account) Remaining() int {
	left := a.RequestLimit - a.RequestCount
	if left < 0 {
		return 0
	}
	return left
}

func (c *Client) Account(ctx context.Context) (*Account, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParam("api_key", c.apiKey).
		Get("/account")
	if err != nil {
		return nil, fmt.Errorf("scraperapi: account: %w", err)
	}
	if res.IsError() {
		return nil, &APIError{
			StatusCode: res.StatusCode(),
			Message:    strings.TrimSpace(res.String()),
		}
	}

	var account Account
	if err := json.Unmarshal(res.Body(), &account); err != nil {
		return nil, fmt.Errorf("scraperapi: decode account: %w", err)
	}
	return &account, nil
}
