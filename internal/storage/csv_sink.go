package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	logx "product-scraper/pkg/logger"
	"product-scraper/pkg/models"
)

var CSVHeader = []string{"Name", "Price", "Link"}

// CSVSink writes products to a CSV file, replacing whatever was there.
type CSVSink struct {
	Path string
}

func (s *CSVSink) Save(_ context.Context, batch []models.Product) error {
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if err := writeCSV(f, batch); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", s.Path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	logx.Info().Str("file", s.Path).Int("rows", len(batch)).Msg("scraping complete, data saved")
	return nil
}

func writeCSV(f *os.File, batch []models.Product) error {
	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		return err
	}
	for _, p := range batch {
		if err := w.Write(p.Row()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
