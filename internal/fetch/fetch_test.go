package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/require"

	"product-scraper/pkg/models"
	"product-scraper/pkg/scraperapi"
)

const listingHTML = `<!DOCTYPE html><html><body><article class="prd _fb col c-prd"></article></body></html>`

func TestDirectFetcher(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		if r.URL.Query().Get("page") == "9" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, listingHTML)
	}))
	defer srv.Close()

	f := NewDirectFetcher("product-scraper/test", 5*time.Second)

	page, err := f.Fetch(context.Background(), srv.URL+"/list?page=1")
	require.NoError(t, err)
	require.True(t, page.OK())
	require.Equal(t, models.Direct, page.Source)
	require.Equal(t, listingHTML, string(page.Body))
	require.Equal(t, "product-scraper/test", gotUA)

	page, err = f.Fetch(context.Background(), srv.URL+"/list?page=9")
	require.NoError(t, err, "error statuses are pages, not errors")
	require.False(t, page.OK())
	require.Equal(t, http.StatusNotFound, page.StatusCode)
}

func TestDirectFetcherNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewDirectFetcher("ua", time.Second).Fetch(context.Background(), addr)
	require.Error(t, err)
}

func newProxy(t *testing.T, contentType, body string) (*ProxyFetcher, *[]string) {
	t.Helper()
	var targets []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		targets = append(targets, r.URL.Query().Get("url"))
		w.Header().Set("Content-Type", contentType)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	client, err := scraperapi.NewClient("key", scraperapi.WithBaseURL(srv.URL))
	require.NoError(t, err)
	return &ProxyFetcher{Client: client, Params: &scraperapi.Params{CountryCode: "ug"}}, &targets
}

func TestProxyFetcher(t *testing.T) {
	f, targets := newProxy(t, "text/html; charset=utf-8", listingHTML)

	page, err := f.Fetch(context.Background(), "https://www.jumia.ug/phones-tablets/?page=1")
	require.NoError(t, err)
	require.Equal(t, models.Proxy, page.Source)
	require.Equal(t, listingHTML, string(page.Body))
	require.Equal(t, []string{"https://www.jumia.ug/phones-tablets/?page=1"}, *targets)
}

func TestProxyFetcherUnexpectedBody(t *testing.T) {
	f, _ := newProxy(t, "text/plain", "Request failed. You will not be charged for this request.")

	_, err := f.Fetch(context.Background(), "https://www.jumia.ug/phones-tablets/?page=1")
	require.True(t, errors.Is(err, ErrUnexpectedResponse))
}

func TestProxyFetcherSniffsUntypedHTML(t *testing.T) {
	f, _ := newProxy(t, "", "  <!doctype html><html></html>")

	page, err := f.Fetch(context.Background(), "https://www.jumia.ug/")
	require.NoError(t, err)
	require.True(t, page.OK())
}

func TestFallbackFetcher(t *testing.T) {
	direct := FetcherFunc(func(ctx context.Context, url string) (*Page, error) {
		return &Page{URL: url, StatusCode: http.StatusOK, Body: []byte(listingHTML), Source: models.Direct}, nil
	})

	t.Run("unexpected response falls back", func(t *testing.T) {
		proxy, _ := newProxy(t, "text/plain", "oops")
		f := &FallbackFetcher{Primary: proxy, Secondary: direct}

		page, err := f.Fetch(context.Background(), "https://www.jumia.ug/?page=1")
		require.NoError(t, err)
		require.Equal(t, models.Direct, page.Source)
	})

	t.Run("transport error does not fall back", func(t *testing.T) {
		boom := errors.New("connection reset")
		primary := FetcherFunc(func(ctx context.Context, url string) (*Page, error) { return nil, boom })
		called := false
		secondary := FetcherFunc(func(ctx context.Context, url string) (*Page, error) {
			called = true
			return nil, nil
		})

		_, err := (&FallbackFetcher{Primary: primary, Secondary: secondary}).Fetch(context.Background(), "u")
		require.ErrorIs(t, err, boom)
		require.False(t, called)
	})

	t.Run("html answer stays on primary", func(t *testing.T) {
		proxy, targets := newProxy(t, "text/html; charset=utf-8", listingHTML)
		called := false
		secondary := FetcherFunc(func(ctx context.Context, url string) (*Page, error) {
			called = true
			return direct(ctx, url)
		})

		page, err := (&FallbackFetcher{Primary: proxy, Secondary: secondary}).Fetch(context.Background(), "https://www.jumia.ug/?page=1")
		require.NoError(t, err)
		require.Equal(t, models.Proxy, page.Source)
		require.Equal(t, listingHTML, string(page.Body))
		require.Len(t, *targets, 1)
		require.False(t, called, "the direct request is only a fallback")
	})
}

type memoryStore struct {
	mu    sync.Mutex
	pages map[string][]byte
	ttls  map[string]time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{pages: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (s *memoryStore) Get(_ context.Context, url string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.pages[url]
	return body, ok, nil
}

func (s *memoryStore) Set(_ context.Context, url string, body []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = body
	s.ttls[url] = ttl
	return nil
}

func TestCachingFetcher(t *testing.T) {
	calls := 0
	next := FetcherFunc(func(ctx context.Context, url string) (*Page, error) {
		calls++
		if url == "missing" {
			return &Page{URL: url, StatusCode: http.StatusNotFound}, nil
		}
		return &Page{URL: url, StatusCode: http.StatusOK, Body: []byte("<html>" + url + "</html>"), Source: models.Direct}, nil
	})
	store := newMemoryStore()
	f := &CachingFetcher{Next: next, Store: store, TTL: time.Hour}
	ctx := context.Background()

	page, err := f.Fetch(ctx, "page-1")
	require.NoError(t, err)
	require.Equal(t, models.Direct, page.Source)
	require.Equal(t, time.Hour, store.ttls["page-1"])

	page, err = f.Fetch(ctx, "page-1")
	require.NoError(t, err)
	require.Equal(t, models.Cache, page.Source)
	require.Equal(t, "<html>page-1</html>", string(page.Body))
	require.Equal(t, 1, calls)

	page, err = f.Fetch(ctx, "missing")
	require.NoError(t, err)
	require.False(t, page.OK())
	_, cached := store.pages["missing"]
	require.False(t, cached, "error pages must not be cached")
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis down")
}

func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("redis down")
}

func TestCachingFetcherStoreFailure(t *testing.T) {
	next := FetcherFunc(func(ctx context.Context, url string) (*Page, error) {
		return &Page{URL: url, StatusCode: http.StatusOK, Body: []byte("x")}, nil
	})
	f := &CachingFetcher{Next: next, Store: brokenStore{}, TTL: time.Minute}

	page, err := f.Fetch(context.Background(), "u")
	require.NoError(t, err)
	require.Equal(t, "x", string(page.Body))
}

func TestBrowserFetcher(t *testing.T) {
	if _, err := exec.LookPath("google-chrome"); err != nil {
		if _, err := exec.LookPath("chromium"); err != nil {
			t.Skip("no chrome binary available")
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, listingHTML)
	}))
	defer srv.Close()

	f, err := NewBrowserFetcher("product-scraper/test", 30*time.Second)
	require.NoError(t, err)
	defer f.Close()

	browser := chromedp.FromContext(f.browserCtx).Browser
	require.NotNil(t, browser, "browser is started by the constructor")

	for i := 0; i < 2; i++ {
		page, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, page.StatusCode)
		require.Equal(t, models.Browser, page.Source)
		require.Contains(t, string(page.Body), "c-prd")
	}
	require.Same(t, browser, chromedp.FromContext(f.browserCtx).Browser, "tabs share one browser")
}

func TestBrowserFetcherStartFailure(t *testing.T) {
	_, err := NewBrowserFetcher("product-scraper/test", time.Second,
		chromedp.ExecPath(filepath.Join(t.TempDir(), "no-such-chrome")))
	require.ErrorContains(t, err, "start browser")
}
