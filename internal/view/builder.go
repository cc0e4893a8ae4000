package view

import (
	"strconv"
	"strings"

	"github.com/nao1215/webrisk/internal/model"
)

// Options configures Build.
type Options struct {
	// Images holds the third-party image endpoint templates.
	Images ImageEndpoints
}

// DefaultOptions returns Options with the built-in image endpoints.
func DefaultOptions() Options {
	return Options{Images: DefaultImageEndpoints()}
}

// Panel is the display-ready view of a website report.
type Panel struct {
	// URL is the target URL as given by the caller.
	URL string `json:"url"`

	// Host is the ASCII host name of URL.
	Host string `json:"host"`

	// Domain is the registrable domain of Host.
	Domain string `json:"domain"`

	// Categories lists the labels of the site's category flags.
	Categories []string `json:"categories"`

	Risk RiskView `json:"risk"`

	Checks CheckSummary `json:"checks"`

	Redirect RedirectView `json:"redirect"`

	// Server lists the server detail rows that are present in the report.
	Server []Field `json:"server"`

	// Locations lists the countries the site resolves to.
	Locations []Location `json:"locations"`

	Blacklist BlacklistView `json:"blacklist"`

	// ScreenshotURL and FaviconURL point at third-party image services.
	// They are empty when the corresponding endpoint is disabled.
	ScreenshotURL string `json:"screenshot_url,omitempty"`
	FaviconURL    string `json:"favicon_url,omitempty"`
}

// RiskView holds the derived risk values.
type RiskView struct {
	Tier RiskTier `json:"tier"`

	// Label is the tier in title case.
	Label string `json:"label"`

	// Slug is the CSS-safe tier name.
	Slug string `json:"slug"`

	// Score is the raw risk score; nil when unknown.
	Score *float64 `json:"score"`

	// Safety is 100 - Score; nil when unknown.
	Safety *float64 `json:"safety"`
}

// Known reports whether the tier could be determined.
func (r RiskView) Known() bool { return r.Tier != TierUnknown }

// RedirectView describes the redirect row.
type RedirectView struct {
	Found  bool   `json:"found"`
	Target string `json:"target,omitempty"`
}

// Field is a labelled value row.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Location is a country the site resolves to.
type Location struct {
	CountryCode string `json:"country_code"`
	FlagURL     string `json:"flag_url,omitempty"`
}

// BlacklistView holds the blacklist section.
type BlacklistView struct {
	// Detections is the detection count reported upstream.
	Detections int `json:"detections"`

	// Total is the number of engines queried.
	Total int `json:"total"`

	// Engines lists engines with detected ones first.
	Engines []model.BlacklistEngine `json:"engines"`
}

// Clean returns the number of engines that did not flag the host.
func (b BlacklistView) Clean() int {
	return b.Total - CountDetected(b.Engines)
}

// Build derives the panel for report and target. A nil report is treated
// as an empty one.
func Build(report *model.WebsiteReport, target string, opts Options) *Panel {
	if report == nil {
		report = &model.WebsiteReport{}
	}

	target = strings.TrimSpace(target)
	host := HostOf(target)

	return &Panel{
		URL:           target,
		Host:          host,
		Domain:        RegistrableDomain(host),
		Categories:    ExtractCategories(report.Categories),
		Risk:          buildRisk(report.RiskResult.Risk),
		Checks:        AnalyzeChecks(report.SecurityChecks),
		Redirect:      RedirectView{Found: report.Redirect.Found, Target: report.Redirect.URL},
		Server:        buildServer(report.Server),
		Locations:     buildLocations(report.GeoLocation, opts.Images),
		Blacklist:     buildBlacklist(report.Blacklists),
		ScreenshotURL: opts.Images.ScreenshotURL(target, host),
		FaviconURL:    opts.Images.FaviconURL(target, host),
	}
}

func buildRisk(score model.Score) RiskView {
	tier := ClassifyRisk(score)
	rv := RiskView{
		Tier:  tier,
		Label: tier.Title(),
		Slug:  tier.Slug(),
	}
	if tier == TierUnknown {
		return rv
	}
	risk := score.Value
	rv.Score = &risk
	if safety, ok := SafetyPercentage(score); ok {
		rv.Safety = &safety
	}
	return rv
}

func buildServer(s model.ServerDetails) []Field {
	fields := make([]Field, 0, 8)
	add := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			fields = append(fields, Field{Label: label, Value: value})
		}
	}
	add("IP Address", s.IP)
	add("Hostname", s.Hostname)
	add("City", s.City)
	add("Region", s.Region)
	add("Country", s.Country)
	add("Continent", s.Continent)
	add("ISP", s.ISP)
	if s.ASN > 0 {
		add("ASN", "AS"+strconv.Itoa(s.ASN))
	}
	return fields
}

func buildLocations(codes []string, images ImageEndpoints) []Location {
	locations := make([]Location, 0, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		locations = append(locations, Location{
			CountryCode: code,
			FlagURL:     images.FlagURL(code),
		})
	}
	return locations
}

func buildBlacklist(summary model.BlacklistSummary) BlacklistView {
	return BlacklistView{
		Detections: summary.Detections,
		Total:      len(summary.Engines),
		Engines:    SortEngines(summary.Engines),
	}
}
