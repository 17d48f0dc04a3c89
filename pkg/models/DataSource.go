package models

// DataSource identifies which fetcher produced a page.
type DataSource int

const (
	None DataSource = iota
	Proxy
	Direct
	Browser
	Cache
)

func (d DataSource) String() string {
	switch d {
	case Proxy:
		return "proxy"
	case Direct:
		return "direct"
	case Browser:
		return "browser"
	case Cache:
		return "cache"
	default:
		return "none"
	}
}
