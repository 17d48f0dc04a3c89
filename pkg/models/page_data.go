package models

import "time"

// PageData describes one fetched listing page.
type PageData struct {
	URL        string
	Page       int
	StatusCode int
	Source     DataSource
	LoadTime   time.Duration
	Products   int
}
