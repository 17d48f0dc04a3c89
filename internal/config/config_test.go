package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SCRAPERAPI_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "secret", cfg.APIKey)
	require.Equal(t, "https://www.jumia.ug/phones-tablets/?page=", cfg.CategoryURL)
	require.Equal(t, "https://www.jumia.ug", cfg.BaseURL)
	require.Equal(t, 1, cfg.StartPage)
	require.Equal(t, 0, cfg.MaxPages)
	require.Equal(t, time.Second, cfg.RequestDelay)
	require.Equal(t, "scraped_products.csv", cfg.OutputFile)
	require.Equal(t, FetchModeProxy, cfg.FetchMode)
	require.True(t, cfg.DirectFallback)
	require.Equal(t, "article.prd._fb.col.c-prd", cfg.Selectors.Card)
	require.Equal(t, "h3.name", cfg.Selectors.Name)
	require.Equal(t, "div.prc", cfg.Selectors.Price)
	require.Equal(t, "a[href]", cfg.Selectors.Link)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FETCH_MODE", "direct")
	t.Setenv("REQUEST_DELAY", "250ms")
	t.Setenv("MAX_PAGES", "3")
	t.Setenv("SELECTOR_CARD", "div.card")
	t.Setenv("PROXY_COUNTRY_CODE", "ug")
	t.Setenv("PROXY_RENDER", "true")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, FetchModeDirect, cfg.FetchMode)
	require.Equal(t, 250*time.Millisecond, cfg.RequestDelay)
	require.Equal(t, 3, cfg.MaxPages)
	require.Equal(t, "div.card", cfg.Selectors.Card)
	require.Equal(t, "ug", cfg.Proxy.CountryCode)
	require.True(t, cfg.Proxy.Render)
}

func TestLoadRequiresKeyInProxyMode(t *testing.T) {
	t.Setenv("SCRAPERAPI_KEY", "")
	t.Setenv("FETCH_MODE", "proxy")

	_, err := Load()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalid))
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			CategoryURL: "https://example.com/list?page=",
			BaseURL:     "https://example.com",
			StartPage:   1,
			OutputFile:  "out.csv",
			FetchMode:   FetchModeDirect,
		}
	}

	testCases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "valid", mutate: func(*Config) {}, ok: true},
		{name: "unknown mode", mutate: func(c *Config) { c.FetchMode = "carrier-pigeon" }},
		{name: "zero start page", mutate: func(c *Config) { c.StartPage = 0 }},
		{name: "negative max pages", mutate: func(c *Config) { c.MaxPages = -1 }},
		{name: "relative base url", mutate: func(c *Config) { c.BaseURL = "/shop" }},
		{name: "empty output", mutate: func(c *Config) { c.OutputFile = "" }},
		{name: "negative delay", mutate: func(c *Config) { c.RequestDelay = -time.Second }},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			cfg := valid()
			test.mutate(&cfg)
			err := cfg.Validate()
			if test.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestPageURL(t *testing.T) {
	cfg := Config{CategoryURL: "https://www.jumia.ug/phones-tablets/?page="}
	require.Equal(t, "https://www.jumia.ug/phones-tablets/?page=7", cfg.PageURL(7))
}
