package report

import (
	"strconv"
	"strings"

	"github.com/nao1215/webrisk/internal/view"
)

// formatPercent formats a percentage with at most one decimal place.
// nil renders as "N/A".
func formatPercent(v *float64) string {
	if v == nil {
		return "N/A"
	}
	s := strconv.FormatFloat(*v, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return s + "%"
}

// formatScore formats a raw risk score; nil renders as "N/A".
func formatScore(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strings.TrimSuffix(strconv.FormatFloat(*v, 'f', 1, 64), ".0")
}

// redirectText describes the redirect row.
func redirectText(r view.RedirectView) string {
	if !r.Found {
		return "No redirect"
	}
	if r.Target == "" {
		return "Redirects"
	}
	return "Redirects to " + r.Target
}

// tierColor is the RGB accent used for a tier in non-CSS outputs.
func tierColor(t view.RiskTier) [3]int {
	switch t {
	case view.TierSafe:
		return [3]int{22, 163, 74}
	case view.TierModeratelySafe:
		return [3]int{101, 163, 13}
	case view.TierRisky:
		return [3]int{217, 119, 6}
	case view.TierDangerous:
		return [3]int{234, 88, 12}
	case view.TierVeryDangerous:
		return [3]int{220, 38, 38}
	default:
		return [3]int{100, 116, 139}
	}
}

// detectedText returns the verdict label for an engine.
func detectedText(detected bool) string {
	if detected {
		return "Detected"
	}
	return "Clean"
}
