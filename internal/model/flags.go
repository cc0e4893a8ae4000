package model

import (
	"encoding/json"
	"math"

	"gopkg.in/yaml.v3"
)

// Flags is a record of named booleans such as site categories or
// security-check results.
//
// The upstream service is not strict about value types, so decoding
// coerces values the way a loosely typed client would: false, null, 0,
// NaN and "" are false; everything else is true.
type Flags map[string]bool

// Get reports the value of key and whether the key was present.
func (f Flags) Get(key string) (value bool, ok bool) {
	value, ok = f[key]
	return value, ok
}

// UnmarshalJSON decodes a JSON object, coercing each value to a boolean.
func (f *Flags) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = fromLoose(raw)
	return nil
}

// UnmarshalYAML decodes a YAML mapping, coercing each value to a boolean.
func (f *Flags) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*f = fromLoose(raw)
	return nil
}

// fromLoose converts a decoded record into Flags. A nil record stays nil.
func fromLoose(raw map[string]any) Flags {
	if raw == nil {
		return nil
	}
	flags := make(Flags, len(raw))
	for k, v := range raw {
		flags[k] = truthy(v)
	}
	return flags
}

// truthy reports whether a decoded value counts as set.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0 && !math.IsNaN(val)
	case int:
		return val != 0
	case int64:
		return val != 0
	case uint64:
		return val != 0
	case string:
		return val != ""
	default:
		// objects and arrays are set
		return true
	}
}
