package storage

import (
	"context"
	"errors"

	"product-scraper/internal/crawler/engine"
	"product-scraper/pkg/models"
)

// MultiSink saves every batch to all of its sinks, even when one fails.
type MultiSink []engine.Sink

func (m MultiSink) Save(ctx context.Context, batch []models.Product) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Save(ctx, batch); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
