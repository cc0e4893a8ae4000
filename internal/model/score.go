package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Score is a numeric risk score that may be missing or unusable.
//
// Valid is false when the source value was absent, null, not a number,
// NaN or infinite. Consumers must check Usable before using Value.
type Score struct {
	Value float64
	Valid bool
}

// NewScore returns a Score for v. NaN and infinities produce an invalid score.
func NewScore(v float64) Score {
	return Score{Value: v, Valid: isFinite(v)}
}

// Usable reports whether the score is valid and finite. Scores built as
// literals can carry Valid with a non-finite Value.
func (s Score) Usable() bool {
	return s.Valid && isFinite(s.Value)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// UnmarshalJSON accepts numbers and numeric strings. Any other value
// decodes to an invalid score without error.
func (s *Score) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = scoreFromLoose(raw)
	return nil
}

// MarshalJSON writes the number, or null when the score is invalid.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Usable() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(s.Value, 'f', -1, 64)), nil
}

// UnmarshalYAML accepts numeric scalars and numeric strings.
func (s *Score) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		*s = Score{}
		return nil
	}
	*s = scoreFromLoose(node.Value)
	return nil
}

// MarshalYAML writes the number, or null when the score is invalid.
func (s Score) MarshalYAML() (any, error) {
	if !s.Usable() {
		return nil, nil
	}
	return s.Value, nil
}

func scoreFromLoose(v any) Score {
	switch val := v.(type) {
	case float64:
		return NewScore(val)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return Score{}
		}
		return NewScore(f)
	default:
		return Score{}
	}
}
