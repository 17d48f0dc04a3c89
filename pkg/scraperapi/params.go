package scraperapi

import (
	"net/url"
	"strconv"
)

// Params are the optional proxy parameters of a request. Zero values are not sent.
type Params struct {
	Render          bool
	CountryCode     string
	Premium         bool
	UltraPremium    bool
	SessionNumber   int
	KeepHeaders     bool
	DeviceType      string // "desktop" or "mobile"
	Autoparse       bool
	OutputFormat    string // "json" or "csv", only with Autoparse
	FollowRedirect  *bool
	Retry404        bool
	WaitForSelector string
}

// Values encodes the parameters as query values.
func (p *Params) Values() url.Values {
	v := url.Values{}
	if p == nil {
		return v
	}
	setBool(v, "render", p.Render)
	setString(v, "country_code", p.CountryCode)
	setBool(v, "premium", p.Premium)
	setBool(v, "ultra_premium", p.UltraPremium)
	if p.SessionNumber != 0 {
		v.Set("session_number", strconv.Itoa(p.SessionNumber))
	}
	setBool(v, "keep_headers", p.KeepHeaders)
	setString(v, "device_type", p.DeviceType)
	setBool(v, "autoparse", p.Autoparse)
	setString(v, "output_format", p.OutputFormat)
	if p.FollowRedirect != nil {
		v.Set("follow_redirect", strconv.FormatBool(*p.FollowRedirect))
	}
	setBool(v, "retry_404", p.Retry404)
	setString(v, "wait_for_selector", p.WaitForSelector)
	return v
}

func setBool(v url.Values, key string, b bool) {
	if b {
		v.Set(key, "true")
	}
}

func setString(v url.Values, key, s string) {
	if s != "" {
		v.Set(key, s)
	}
}
