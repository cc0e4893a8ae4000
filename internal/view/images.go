package view

import (
	"net/url"
	"strings"
)

// Default third-party image endpoints.
// Placeholders: {url} raw target URL, {url_escaped} query-escaped target,
// {host} ASCII host name, {cc} lower-case country code.
const (
	DefaultScreenshotEndpoint = "https://image.thum.io/get/width/1200/{url}"
	DefaultFaviconEndpoint    = "https://www.google.com/s2/favicons?domain={host}&sz=64"
	DefaultFlagEndpoint       = "https://flagcdn.com/{cc}.svg"
)

// ImageEndpoints holds the URL templates for images shown in the panel.
// An empty template disables that image.
type ImageEndpoints struct {
	Screenshot string `yaml:"screenshot"`
	Favicon    string `yaml:"favicon"`
	Flag       string `yaml:"flag"`
}

// DefaultImageEndpoints returns the built-in endpoint templates.
func DefaultImageEndpoints() ImageEndpoints {
	return ImageEndpoints{
		Screenshot: DefaultScreenshotEndpoint,
		Favicon:    DefaultFaviconEndpoint,
		Flag:       DefaultFlagEndpoint,
	}
}

// ScreenshotURL returns the screenshot image URL for target.
func (e ImageEndpoints) ScreenshotURL(target, host string) string {
	if target == "" {
		return ""
	}
	return expand(e.Screenshot, target, host, "")
}

// FaviconURL returns the favicon image URL for host.
func (e ImageEndpoints) FaviconURL(target, host string) string {
	if host == "" {
		return ""
	}
	return expand(e.Favicon, target, host, "")
}

// FlagURL returns the flag image URL for a country code.
func (e ImageEndpoints) FlagURL(countryCode string) string {
	if countryCode == "" {
		return ""
	}
	return expand(e.Flag, "", "", countryCode)
}

func expand(template, target, host, cc string) string {
	if template == "" {
		return ""
	}
	r := strings.NewReplacer(
		"{url_escaped}", url.QueryEscape(target),
		"{url}", target,
		"{host}", host,
		"{cc}", strings.ToLower(cc),
	)
	return r.Replace(template)
}
