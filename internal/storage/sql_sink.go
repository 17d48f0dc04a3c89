package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib" // Import the driver
	_ "modernc.org/sqlite"

	logx "product-scraper/pkg/logger"
	"product-scraper/pkg/models"
)

// Dialect holds the statements that differ between databases.
type Dialect struct {
	Driver string
	Schema string
	Insert string
}

var Postgres = Dialect{
	Driver: "pgx",
	Schema: `
		CREATE TABLE IF NOT EXISTS products (
			id         BIGSERIAL PRIMARY KEY,
			name       TEXT,
			price      TEXT,
			link       TEXT,
			scraped_at TIMESTAMPTZ NOT NULL
		)`,
	Insert: `INSERT INTO products (name, price, link, scraped_at) VALUES ($1, $2, $3, $4)`,
}

var SQLite = Dialect{
	Driver: "sqlite",
	Schema: `
		CREATE TABLE IF NOT EXISTS products (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT,
			price      TEXT,
			link       TEXT,
			scraped_at TIMESTAMP NOT NULL
		)`,
	Insert: `INSERT INTO products (name, price, link, scraped_at) VALUES (?, ?, ?, ?)`,
}

type Storage struct {
	db      *sql.DB
	dialect Dialect
}

// SQLSink implements engine.Sink on top of a products table.
type SQLSink struct {
	*Storage
	now func() time.Time
}

func NewSQLSink(db *sql.DB, dialect Dialect) *SQLSink {
	return &SQLSink{Storage: &Storage{db: db, dialect: dialect}, now: time.Now}
}

func (s *SQLSink) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Schema)
	return err
}

func (s *SQLSink) Save(ctx context.Context, batch []models.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.dialect.Insert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	scrapedAt := s.now().UTC()
	for _, p := range batch {
		if _, err := stmt.ExecContext(ctx, nullString(p.Name), nullString(p.Price), nullString(p.Link), scrapedAt); err != nil {
			return fmt.Errorf("insert %v: %w", p.Row(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logx.Info().Str("driver", s.dialect.Driver).Int("rows", len(batch)).Msg("saved batch of products")
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (s *SQLSink) Close() error {
	return s.db.Close()
}

// OpenSQLite opens (and creates) a SQLite database file.
func OpenSQLite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(SQLite.Driver, path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// WaitForDB opens a Postgres connection, retrying while the server comes up.
func WaitForDB(ctx context.Context, url string, attempts int, interval time.Duration) (*sql.DB, error) {
	db, err := sql.Open(Postgres.Driver, url)
	if err != nil {
		return nil, err
	}

	for i := 0; i < attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			logx.Info().Msg("connected to database")
			return db, nil
		}
		logx.Warn().Err(err).Int("attempt", i+1).Msg("waiting for database")

		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}

	db.Close()
	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", attempts, err)
}
