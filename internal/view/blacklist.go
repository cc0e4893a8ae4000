package view

import (
	"cmp"
	"slices"
	"strings"

	"github.com/nao1215/webrisk/internal/model"
)

// SortEngines returns a copy of engines with detected engines first.
// Engines with the same status are ordered by name, case-insensitively,
// so the output is the same for every permutation of the input.
func SortEngines(engines []model.BlacklistEngine) []model.BlacklistEngine {
	sorted := slices.Clone(engines)
	if sorted == nil {
		sorted = make([]model.BlacklistEngine, 0)
	}
	slices.SortStableFunc(sorted, compareEngines)
	return sorted
}

func compareEngines(a, b model.BlacklistEngine) int {
	if a.Detected != b.Detected {
		if a.Detected {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return cmp.Compare(a.Name, b.Name)
}

// CountDetected returns how many engines flagged the host.
func CountDetected(engines []model.BlacklistEngine) int {
	n := 0
	for _, e := range engines {
		if e.Detected {
			n++
		}
	}
	return n
}
