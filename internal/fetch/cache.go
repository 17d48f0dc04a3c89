package fetch

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	logx "product-scraper/pkg/logger"
	"product-scraper/pkg/models"
)

// PageStore keeps fetched page bodies keyed by URL.
type PageStore interface {
	Get(ctx context.Context, url string) (body []byte, ok bool, err error)
	Set(ctx context.Context, url string, body []byte, ttl time.Duration) error
}

// CachingFetcher serves successful pages from Store and fills it from Next.
// Store failures are logged and the request goes to Next.
type CachingFetcher struct {
	Next  Fetcher
	Store PageStore
	TTL   time.Duration
}

func (f *CachingFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	body, ok, err := f.Store.Get(ctx, url)
	if err != nil {
		logx.Warn().Err(err).Str("url", url).Msg("page cache read failed")
	}
	if ok {
		return &Page{URL: url, StatusCode: http.StatusOK, Body: body, Source: models.Cache}, nil
	}

	page, err := f.Next.Fetch(ctx, url)
	if err != nil || !page.OK() {
		return page, err
	}

	if err := f.Store.Set(ctx, url, page.Body, f.TTL); err != nil {
		logx.Warn().Err(err).Str("url", url).Msg("page cache write failed")
	}
	return page, nil
}

const redisKeyPrefix = "product-scraper:page:"

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, url string) ([]byte, bool, error) {
	body, err := s.rdb.Get(ctx, redisKeyPrefix+url).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

func (s *RedisStore) Set(ctx context.Context, url string, body []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, redisKeyPrefix+url, body, ttl).Err()
}
