package engine

import (
	"context"
	"errors"
	"fmt"

	"product-scraper/internal/crawler"
	logx "product-scraper/pkg/logger"
	"product-scraper/pkg/models"
)

// Processor defines how to scrape a single listing page.
// It returns page metadata and the products found on it.
type Processor interface {
	Process(ctx context.Context, url string) (models.PageData, []models.Product, error)
}

// Sink defines how to persist the data.
type Sink interface {
	Save(ctx context.Context, batch []models.Product) error
}

// Config holds the pagination settings.
type Config struct {
	StartPage int
	MaxPages  int // 0 means until an empty page
	PageURL   func(page int) string
}

type StopReason string

const (
	StopEmptyPage StopReason = "empty-page"
	StopStatus    StopReason = "status"
	StopError     StopReason = "error"
	StopMaxPages  StopReason = "max-pages"
	StopRobots    StopReason = "robots"
	StopCanceled  StopReason = "canceled"
)

// Result is the outcome of a run. It is filled even when Run returns an error.
type Result struct {
	Products []models.Product
	Pages    []models.PageData
	LastPage int
	Stop     StopReason
}

// Engine walks a paginated listing one page at a time.
type Engine struct {
	config    Config
	processor Processor
	sink      Sink
	domainMgr *crawler.DomainManager
}

func NewEngine(cfg Config, proc Processor, sink Sink, domainMgr *crawler.DomainManager) *Engine {
	if cfg.StartPage < 1 {
		cfg.StartPage = 1
	}
	return &Engine{
		config:    cfg,
		processor: proc,
		sink:      sink,
		domainMgr: domainMgr,
	}
}

// Run scrapes pages until a stop condition, then saves everything collected.
// The returned error is the terminal fetch error, if any, joined with a save error.
func (engine *Engine) Run(ctx context.Context) (*Result, error) {
	result := &Result{}
	crawlErr := engine.crawl(ctx, result)

	logx.Info().
		Int("products", len(result.Products)).
		Int("pages", len(result.Pages)).
		Str("stop", string(result.Stop)).
		Msg("scraping finished")

	if len(result.Products) == 0 {
		logx.Info().Msg("no products were scraped")
		return result, crawlErr
	}

	// save what we have even if the run was interrupted
	if err := engine.sink.Save(context.WithoutCancel(ctx), result.Products); err != nil {
		return result, errors.Join(crawlErr, fmt.Errorf("save products: %w", err))
	}
	return result, crawlErr
}

func (engine *Engine) crawl(ctx context.Context, result *Result) error {
	for page := engine.config.StartPage; ; page++ {
		if engine.config.MaxPages > 0 && page-engine.config.StartPage >= engine.config.MaxPages {
			result.Stop = StopMaxPages
			return nil
		}

		link := engine.config.PageURL(page)
		result.LastPage = page

		if !engine.domainMgr.IsAllowed(ctx, link) {
			logx.Warn().Str("url", link).Msg("disallowed by robots.txt")
			result.Stop = StopRobots
			return nil
		}
		if err := engine.domainMgr.Wait(ctx, link); err != nil {
			result.Stop = StopCanceled
			return fmt.Errorf("page %d: %w", page, err)
		}

		logx.Info().Int("page", page).Str("url", link).Msg("scraping page")

		data, products, err := engine.processor.Process(ctx, link)
		engine.domainMgr.Done(link)
		data.Page = page
		result.Pages = append(result.Pages, data)
		if err != nil {
			result.Stop = StopError
			if ctx.Err() != nil {
				result.Stop = StopCanceled
			}
			logx.Error().Err(err).Int("page", page).Msg("error while scraping page")
			return fmt.Errorf("page %d: %w", page, err)
		}

		if data.StatusCode < 200 || data.StatusCode >= 300 {
			logx.Warn().Int("page", page).Int("status", data.StatusCode).Msg("failed to fetch page")
			result.Stop = StopStatus
			return nil
		}

		if len(products) == 0 {
			logx.Info().Int("page", page).Msg("no more products found")
			result.Stop = StopEmptyPage
			return nil
		}

		result.Products = append(result.Products, products...)
		logx.Info().
			Int("page", page).
			Int("found", len(products)).
			Str("source", data.Source.String()).
			Dur("load_time", data.LoadTime).
			Msg("found products")
	}
}
