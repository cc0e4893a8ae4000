package view

import (
	"slices"

	"github.com/nao1215/webrisk/internal/model"
)

// checkRule describes one security check and which value means it passed.
type checkRule struct {
	key      string
	label    string
	passWhen bool
}

// securityChecks is the security-check table in display order.
var securityChecks = []checkRule{
	{key: "is_malware", label: "Malware", passWhen: false},
	{key: "is_phishing", label: "Phishing", passWhen: false},
	{key: "is_spam", label: "Spam", passWhen: false},
	{key: "is_suspicious", label: "Suspicious Activity", passWhen: false},
	{key: "is_cryptojacking", label: "Cryptojacking", passWhen: false},
	{key: "is_parked", label: "Parked Domain", passWhen: false},
	{key: "is_risky_tld", label: "Risky TLD", passWhen: false},
	{key: "is_adult", label: "Adult Content", passWhen: false},
	{key: "is_ssl_valid", label: "Valid SSL Certificate", passWhen: true},
	{key: "is_dns_valid", label: "Valid DNS Records", passWhen: true},
}

// CheckSummary partitions the security checks present in a report.
type CheckSummary struct {
	FailedChecks []string `json:"failed_checks"`
	PassedChecks []string `json:"passed_checks"`
}

// FailedCount returns the number of failed checks.
func (s CheckSummary) FailedCount() int { return len(s.FailedChecks) }

// PassedCount returns the number of passed checks.
func (s CheckSummary) PassedCount() int { return len(s.PassedChecks) }

// Total returns the number of checks that were evaluated.
func (s CheckSummary) Total() int { return len(s.FailedChecks) + len(s.PassedChecks) }

// AnalyzeChecks maps raw check results to labelled pass/fail lists.
// Checks missing from the report are not evaluated, and unknown keys are
// ignored.
func AnalyzeChecks(checks model.Flags) CheckSummary {
	summary := CheckSummary{
		FailedChecks: make([]string, 0),
		PassedChecks: make([]string, 0),
	}
	for _, rule := range securityChecks {
		value, ok := checks.Get(rule.key)
		if !ok {
			continue
		}
		if value == rule.passWhen {
			summary.PassedChecks = append(summary.PassedChecks, rule.label)
		} else {
			summary.FailedChecks = append(summary.FailedChecks, rule.label)
		}
	}
	return summary
}

// UnmappedChecks returns check keys present in the report that the
// analyzer does not know, sorted by key. Unlike categories, a check that
// is present but false is still reported.
func UnmappedChecks(checks model.Flags) []string {
	known := make(map[string]struct{}, len(securityChecks))
	for _, rule := range securityChecks {
		known[rule.key] = struct{}{}
	}
	var keys []string
	for k := range checks {
		if _, ok := known[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}
