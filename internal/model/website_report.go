package model

// WebsiteReport is the pre-fetched reputation report for a single website.
//
// The zero value is a valid, empty report: no categories, no checks, an
// unknown risk score and no blacklist engines.
type WebsiteReport struct {
	// Categories holds the site category flags (e.g. "is_torrent").
	Categories Flags `json:"categories" yaml:"categories"`

	// SecurityChecks holds the raw security-check results, keyed by check name.
	// Their meaning (whether true is a pass or a fail) is decided by the analyzer.
	SecurityChecks Flags `json:"security_checks" yaml:"security_checks"`

	// RiskResult carries the numeric risk score in the range [0, 100].
	RiskResult RiskResult `json:"risk_result" yaml:"risk_result"`

	// Redirect describes whether the site redirects elsewhere.
	Redirect Redirect `json:"redirect" yaml:"redirect"`

	// Server holds details about the host serving the site.
	Server ServerDetails `json:"server_details" yaml:"server_details"`

	// GeoLocation lists the ISO 3166-1 alpha-2 country codes the site resolves to.
	GeoLocation []string `json:"geo_location,omitempty" yaml:"geo_location,omitempty"`

	// Blacklists summarizes blacklist engine verdicts for the host.
	Blacklists BlacklistSummary `json:"blacklists" yaml:"blacklists"`
}

// RiskResult wraps the risk score. Higher means riskier.
type RiskResult struct {
	Risk Score `json:"risk" yaml:"risk"`
}

// Redirect describes the redirect behaviour of the site.
type Redirect struct {
	// Found is true when the site redirects.
	Found bool `json:"found" yaml:"found"`

	// URL is the redirect target. It may be empty even when Found is true.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// ServerDetails describes the server hosting the site.
// Every field is optional; empty fields are omitted from rendered output.
type ServerDetails struct {
	IP        string `json:"ip,omitempty" yaml:"ip,omitempty"`
	Hostname  string `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	City      string `json:"city_name,omitempty" yaml:"city_name,omitempty"`
	Region    string `json:"region_name,omitempty" yaml:"region_name,omitempty"`
	Country   string `json:"country_name,omitempty" yaml:"country_name,omitempty"`
	Continent string `json:"continent_name,omitempty" yaml:"continent_name,omitempty"`
	ISP       string `json:"isp,omitempty" yaml:"isp,omitempty"`
	ASN       int    `json:"asn,omitempty" yaml:"asn,omitempty"`
}

// BlacklistSummary is the result of querying third-party blacklist engines.
type BlacklistSummary struct {
	// Detections is the number of engines that flagged the host,
	// as reported by the upstream service.
	Detections int `json:"detections" yaml:"detections"`

	// Engines lists every engine queried, in upstream order.
	Engines []BlacklistEngine `json:"engines,omitempty" yaml:"engines,omitempty"`
}

// BlacklistEngine is a single engine verdict.
type BlacklistEngine struct {
	Name     string `json:"name" yaml:"name"`
	Detected bool   `json:"detected" yaml:"detected"`
}
