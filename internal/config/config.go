package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	logx "product-scraper/pkg/logger"
	"product-scraper/pkg/redis"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

const (
	FetchModeProxy   = "proxy"
	FetchModeDirect  = "direct"
	FetchModeBrowser = "browser"
)

type Config struct {
	// APIKey maps to SCRAPERAPI_KEY. Only required in proxy mode, see Validate.
	APIKey       string `envconfig:"SCRAPERAPI_KEY"`
	ProxyBaseURL string `envconfig:"SCRAPERAPI_BASE_URL" default:"https://api.scraperapi.com"`

	// CategoryURL is the listing URL template, the page number is appended to it.
	CategoryURL string `envconfig:"CATEGORY_URL" default:"https://www.jumia.ug/phones-tablets/?page="`

	// BaseURL is the site origin relative product links are resolved against.
	BaseURL string `envconfig:"BASE_URL" default:"https://www.jumia.ug"`

	StartPage int `envconfig:"START_PAGE" default:"1"`
	MaxPages  int `envconfig:"MAX_PAGES" default:"0"`

	// RequestDelay maps to REQUEST_DELAY. We can parse durations directly!
	RequestDelay   time.Duration `envconfig:"REQUEST_DELAY" default:"1s"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"70s"`

	OutputFile string `envconfig:"OUTPUT_FILE" default:"scraped_products.csv"`

	FetchMode      string `envconfig:"FETCH_MODE" default:"proxy"`
	DirectFallback bool   `envconfig:"DIRECT_FALLBACK" default:"true"`
	UserAgent      string `envconfig:"USER_AGENT" default:"product-scraper/1.0"`
	RespectRobots  bool   `envconfig:"RESPECT_ROBOTS" default:"false"`

	Selectors Selectors `envconfig:"SELECTOR"`
	Proxy     Proxy     `envconfig:"PROXY"`

	// Optional sinks and cache. Empty means disabled.
	DatabaseURL string        `envconfig:"DB_URL"`
	SQLitePath  string        `envconfig:"SQLITE_PATH"`
	Redis       redis.Config  `envconfig:"REDIS"`
	CacheTTL    time.Duration `envconfig:"CACHE_TTL" default:"1h"`

	Environment string `envconfig:"APP_ENV" default:"development"`
}

// Selectors are the structural CSS selectors of a product card.
type Selectors struct {
	Card  string `envconfig:"CARD" default:"article.prd._fb.col.c-prd"`
	Name  string `envconfig:"NAME" default:"h3.name"`
	Price string `envconfig:"PRICE" default:"div.prc"`
	Link  string `envconfig:"LINK" default:"a[href]"`
}

// Proxy holds the request parameters forwarded to the scraping proxy.
type Proxy struct {
	Render        bool   `envconfig:"RENDER"`
	CountryCode   string `envconfig:"COUNTRY_CODE"`
	Premium       bool   `envconfig:"PREMIUM"`
	DeviceType    string `envconfig:"DEVICE_TYPE"`
	SessionNumber int    `envconfig:"SESSION_NUMBER"`
}

// Load processes environment variables and populates the Config struct.
func Load() (*Config, error) {
	// In Docker/K8s there is usually no .env file, vars are injected directly.
	if err := godotenv.Load(); err != nil {
		if _, statErr := os.Stat(".env"); statErr == nil {
			logx.Warn().Err(err).Msg(".env file found but could not be loaded")
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the cross-field rules envconfig tags cannot express.
func (c *Config) Validate() error {
	switch c.FetchMode {
	case FetchModeProxy:
		if c.APIKey == "" {
			return fmt.Errorf("%w: SCRAPERAPI_KEY is required when FETCH_MODE=%s", ErrInvalid, FetchModeProxy)
		}
	case FetchModeDirect, FetchModeBrowser:
	default:
		return fmt.Errorf("%w: unknown FETCH_MODE %q", ErrInvalid, c.FetchMode)
	}

	if c.StartPage < 1 {
		return fmt.Errorf("%w: START_PAGE must be >= 1, got %d", ErrInvalid, c.StartPage)
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("%w: MAX_PAGES must be >= 0, got %d", ErrInvalid, c.MaxPages)
	}
	if c.RequestDelay < 0 {
		return fmt.Errorf("%w: REQUEST_DELAY must not be negative", ErrInvalid)
	}
	if c.OutputFile == "" {
		return fmt.Errorf("%w: OUTPUT_FILE is empty", ErrInvalid)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: BASE_URL %q is not an absolute URL", ErrInvalid, c.BaseURL)
	}
	if _, err := url.Parse(c.CategoryURL); err != nil || c.CategoryURL == "" {
		return fmt.Errorf("%w: CATEGORY_URL %q is not a URL", ErrInvalid, c.CategoryURL)
	}
	return nil
}

// PageURL builds the listing URL for a page number.
func (c *Config) PageURL(page int) string {
	return fmt.Sprintf("%s%d", c.CategoryURL, page)
}
