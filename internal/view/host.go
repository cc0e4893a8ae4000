package view

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// HostOf returns the ASCII (punycode) host name of target.
// A target without a scheme is treated as an http URL. If no host can be
// found the trimmed target is returned unchanged.
func HostOf(target string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		return ""
	}
	raw := target
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return target
	}
	host := strings.TrimSuffix(u.Hostname(), ".")
	if net.ParseIP(host) != nil {
		return host
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return strings.ToLower(host)
	}
	return ascii
}

// RegistrableDomain returns the eTLD+1 of host, e.g. "example.co.uk" for
// "www.example.co.uk". IP addresses and hosts without a registrable part
// are returned as is.
func RegistrableDomain(host string) string {
	if host == "" || net.ParseIP(host) != nil {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}
