package view

import (
	"strings"

	"github.com/nao1215/webrisk/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RiskTier is the human-readable bucket for a risk score.
type RiskTier string

// Risk tiers, from least to most risky.
const (
	TierUnknown        RiskTier = "unknown"
	TierSafe           RiskTier = "safe"
	TierModeratelySafe RiskTier = "moderately safe"
	TierRisky          RiskTier = "risky"
	TierDangerous      RiskTier = "dangerous"
	TierVeryDangerous  RiskTier = "very dangerous"
)

// Tier boundaries. Each bucket is half-open: [lower, upper).
const (
	safeUpper           = 5
	moderatelySafeUpper = 15
	riskyUpper          = 50
	dangerousUpper      = 75
)

// String returns the tier label.
func (t RiskTier) String() string { return string(t) }

// Slug returns a CSS-safe form of the tier, e.g. "moderately-safe".
func (t RiskTier) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(t)), " ", "-")
}

// Title returns the tier in title case, e.g. "Moderately Safe".
func (t RiskTier) Title() string {
	return cases.Title(language.English).String(string(t))
}

// ClassifyRisk maps a risk score to its tier. The first matching bucket wins.
// Out-of-range values land in the outermost buckets; an invalid score
// (missing, non-numeric, NaN or infinite) is TierUnknown.
func ClassifyRisk(score model.Score) RiskTier {
	if !score.Usable() {
		return TierUnknown
	}
	risk := score.Value
	switch {
	case risk < safeUpper:
		return TierSafe
	case risk < moderatelySafeUpper:
		return TierModeratelySafe
	case risk < riskyUpper:
		return TierRisky
	case risk < dangerousUpper:
		return TierDangerous
	case risk >= dangerousUpper:
		return TierVeryDangerous
	default:
		return TierUnknown
	}
}

// SafetyPercentage returns 100 - risk, the value shown to users.
// ok is false when the score is invalid.
func SafetyPercentage(score model.Score) (pct float64, ok bool) {
	if !score.Usable() {
		return 0, false
	}
	return 100 - score.Value, true
}
