package crawler

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"

	logx "product-scraper/pkg/logger"
)

// DomainManager enforces the politeness delay and, optionally, robots.txt per host.
type DomainManager struct {
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	robotsCache map[string]*robotstxt.Group

	delay         time.Duration
	respectRobots bool
	userAgent     string
	http          *resty.Client
}

func NewDomainManager(delay time.Duration, respectRobots bool, userAgent string) *DomainManager {
	return &DomainManager{
		limiters:      make(map[string]*rate.Limiter),
		robotsCache:   make(map[string]*robotstxt.Group),
		delay:         delay,
		respectRobots: respectRobots,
		userAgent:     userAgent,
		http:          resty.New().SetTimeout(10 * time.Second),
	}
}

// Wait blocks until the next request to the host of targetURL may be sent.
func (d *DomainManager) Wait(ctx context.Context, targetURL string) error {
	u, err := url.Parse(targetURL)
	if err != nil {
		return err
	}
	domain := u.Host

	d.mu.Lock()
	limiter, exists := d.limiters[domain]
	if !exists {
		// burst 1: the first request goes out immediately
		limiter = d.newLimiter()
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// Done marks the end of a request to the host of targetURL. The next Wait for
// that host blocks for the full delay counted from now, however long the
// request itself took.
func (d *DomainManager) Done(targetURL string) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return
	}

	limiter := d.newLimiter()
	limiter.Allow() // spend the burst token

	d.mu.Lock()
	d.limiters[u.Host] = limiter
	d.mu.Unlock()
}

func (d *DomainManager) newLimiter() *rate.Limiter {
	every := rate.Inf
	if d.delay > 0 {
		every = rate.Every(d.delay)
	}
	return rate.NewLimiter(every, 1)
}

func (d *DomainManager) IsAllowed(ctx context.Context, link string) bool {
	if !d.respectRobots {
		return true
	}

	u, err := url.Parse(link)
	if err != nil {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	group, exists := d.robotsCache[u.Host]
	if !exists {
		group = d.fetchRobots(ctx, u)
		d.robotsCache[u.Host] = group
	}

	if group == nil {
		return true // No robots.txt or parse error = Allowed
	}
	return group.Test(u.RequestURI())
}

func (d *DomainManager) fetchRobots(ctx context.Context, u *url.URL) *robotstxt.Group {
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"

	res, err := d.http.R().SetContext(ctx).Get(robotsURL)
	if err != nil || res.StatusCode() != http.StatusOK {
		logx.Debug().Str("url", robotsURL).Err(err).Msg("robots.txt unavailable, assuming allowed")
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(res.StatusCode(), res.Body())
	if err != nil {
		logx.Warn().Str("url", robotsURL).Err(err).Msg("robots.txt unparsable, assuming allowed")
		return nil
	}
	return data.FindGroup(d.userAgent)
}
