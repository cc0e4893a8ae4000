package view

import "slices"

// Direction describes how the risk moved between two panels.
type Direction string

// Risk directions.
const (
	DirectionImproved  Direction = "improved"
	DirectionWorsened  Direction = "worsened"
	DirectionUnchanged Direction = "unchanged"
	DirectionUnknown   Direction = "unknown"
)

// Comparison lists what changed between an earlier and a later panel of
// the same site.
type Comparison struct {
	Previous RiskView `json:"previous"`
	Current  RiskView `json:"current"`

	// Delta is Current.Score - Previous.Score; nil when either is unknown.
	Delta     *float64  `json:"delta"`
	Direction Direction `json:"direction"`

	AddedCategories   []string `json:"added_categories"`
	RemovedCategories []string `json:"removed_categories"`

	// NewlyFailed are checks that passed before and fail now.
	NewlyFailed []string `json:"newly_failed"`
	// NewlyPassed are checks that failed before and pass now.
	NewlyPassed []string `json:"newly_passed"`

	// NewDetections are engines that flag the site now but did not before.
	NewDetections []string `json:"new_detections"`
	// ClearedDetections are engines that no longer flag the site.
	ClearedDetections []string `json:"cleared_detections"`
}

// Changed reports whether anything besides the score moved.
func (c Comparison) Changed() bool {
	return c.Previous.Tier != c.Current.Tier ||
		len(c.AddedCategories)+len(c.RemovedCategories) > 0 ||
		len(c.NewlyFailed)+len(c.NewlyPassed) > 0 ||
		len(c.NewDetections)+len(c.ClearedDetections) > 0
}

// Compare returns the differences from prev to curr. Lists keep the order
// of the panel they come from.
func Compare(prev, curr *Panel) Comparison {
	c := Comparison{
		Previous:  prev.Risk,
		Current:   curr.Risk,
		Direction: DirectionUnknown,
	}

	if prev.Risk.Score != nil && curr.Risk.Score != nil {
		d := *curr.Risk.Score - *prev.Risk.Score
		c.Delta = &d
		switch {
		case d < 0:
			c.Direction = DirectionImproved
		case d > 0:
			c.Direction = DirectionWorsened
		default:
			c.Direction = DirectionUnchanged
		}
	}

	c.AddedCategories = missingFrom(curr.Categories, prev.Categories)
	c.RemovedCategories = missingFrom(prev.Categories, curr.Categories)

	c.NewlyFailed = intersect(curr.Checks.FailedChecks, prev.Checks.PassedChecks)
	c.NewlyPassed = intersect(curr.Checks.PassedChecks, prev.Checks.FailedChecks)

	prevDetected := detectedNames(prev)
	currDetected := detectedNames(curr)
	c.NewDetections = missingFrom(currDetected, prevDetected)
	c.ClearedDetections = missingFrom(prevDetected, currDetected)

	return c
}

// missingFrom returns the items of a that are not in b.
func missingFrom(a, b []string) []string {
	out := make([]string, 0)
	for _, s := range a {
		if !slices.Contains(b, s) {
			out = append(out, s)
		}
	}
	return out
}

// intersect returns the items of a that are also in b.
func intersect(a, b []string) []string {
	out := make([]string, 0)
	for _, s := range a {
		if slices.Contains(b, s) {
			out = append(out, s)
		}
	}
	return out
}

func detectedNames(p *Panel) []string {
	var names []string
	for _, e := range p.Blacklist.Engines {
		if e.Detected {
			names = append(names, e.Name)
		}
	}
	return names
}
