// Package app assembles the scraper pipeline from a config.Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"product-scraper/internal/config"
	"product-scraper/internal/crawler"
	"product-scraper/internal/crawler/engine"
	"product-scraper/internal/fetch"
	"product-scraper/internal/storage"
	logx "product-scraper/pkg/logger"
	"product-scraper/pkg/scraperapi"
)

// Pipeline is a ready to run engine plus the resources it holds.
type Pipeline struct {
	Engine  *engine.Engine
	closers []io.Closer
}

func (p *Pipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run builds the pipeline, scrapes and saves. Results are saved before the
// terminal error, if any, is returned.
func Run(ctx context.Context, cfg *config.Config) (*engine.Result, error) {
	pipeline, err := Build(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer pipeline.Close()

	return pipeline.Engine.Run(ctx)
}

func Build(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	p := &Pipeline{}

	fetcher, err := p.buildFetcher(ctx, cfg)
	if err != nil {
		p.Close()
		return nil, err
	}

	parser, err := crawler.NewParser(cfg.Selectors, cfg.BaseURL)
	if err != nil {
		p.Close()
		return nil, err
	}

	sink, err := p.buildSink(ctx, cfg)
	if err != nil {
		p.Close()
		return nil, err
	}

	p.Engine = engine.NewEngine(
		engine.Config{
			StartPage: cfg.StartPage,
			MaxPages:  cfg.MaxPages,
			PageURL:   cfg.PageURL,
		},
		&crawler.ListingProcessor{Fetcher: fetcher, Parser: parser},
		sink,
		crawler.NewDomainManager(cfg.RequestDelay, cfg.RespectRobots, cfg.UserAgent),
	)
	return p, nil
}

func (p *Pipeline) buildFetcher(ctx context.Context, cfg *config.Config) (fetch.Fetcher, error) {
	var fetcher fetch.Fetcher
	direct := fetch.NewDirectFetcher(cfg.UserAgent, cfg.RequestTimeout)

	switch cfg.FetchMode {
	case config.FetchModeDirect:
		fetcher = direct
	case config.FetchModeBrowser:
		browser, err := fetch.NewBrowserFetcher(cfg.UserAgent, cfg.RequestTimeout)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, browser)
		fetcher = browser
	case config.FetchModeProxy:
		client, err := NewProxyClient(cfg)
		if err != nil {
			return nil, err
		}
		fetcher = &fetch.ProxyFetcher{Client: client, Params: ProxyParams(cfg.Proxy)}
		if cfg.DirectFallback {
			fetcher = &fetch.FallbackFetcher{Primary: fetcher, Secondary: direct}
		}
	default:
		return nil, fmt.Errorf("%w: unknown FETCH_MODE %q", config.ErrInvalid, cfg.FetchMode)
	}

	if cfg.Redis.Enabled() {
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		p.closers = append(p.closers, rdb)
		fetcher = &fetch.CachingFetcher{Next: fetcher, Store: fetch.NewRedisStore(rdb), TTL: cfg.CacheTTL}
		logx.Info().Dur("ttl", cfg.CacheTTL).Msg("page cache enabled")
	}

	logx.Info().Str("mode", cfg.FetchMode).Bool("direct_fallback", cfg.DirectFallback).Msg("fetcher ready")
	return fetcher, nil
}

func (p *Pipeline) buildSink(ctx context.Context, cfg *config.Config) (engine.Sink, error) {
	sinks := storage.MultiSink{&storage.CSVSink{Path: cfg.OutputFile}}

	if cfg.DatabaseURL != "" {
		db, err := storage.WaitForDB(ctx, cfg.DatabaseURL, 10, 2*time.Second)
		if err != nil {
			return nil, err
		}
		sink := storage.NewSQLSink(db, storage.Postgres)
		p.closers = append(p.closers, sink)
		if err := sink.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		sinks = append(sinks, sink)
	}

	if cfg.SQLitePath != "" {
		db, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		sink := storage.NewSQLSink(db, storage.SQLite)
		p.closers = append(p.closers, sink)
		if err := sink.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		sinks = append(sinks, sink)
	}

	return sinks, nil
}

func NewProxyClient(cfg *config.Config) (*scraperapi.Client, error) {
	opts := []scraperapi.Option{
		scraperapi.WithTimeout(cfg.RequestTimeout),
		scraperapi.WithUserAgent(cfg.UserAgent),
	}
	if cfg.ProxyBaseURL != "" {
		opts = append(opts, scraperapi.WithBaseURL(cfg.ProxyBaseURL))
	}
	return scraperapi.NewClient(cfg.APIKey, opts...)
}

func ProxyParams(p config.Proxy) *scraperapi.Params {
	return &scraperapi.Params{
		Render:        p.Render,
		CountryCode:   p.CountryCode,
		Premium:       p.Premium,
		DeviceType:    p.DeviceType,
		SessionNumber: p.SessionNumber,
	}
}
