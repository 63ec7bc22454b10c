package config

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from either a duration
// string ("300ms", "30s") or a bare number of seconds.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String renders the duration in time.Duration notation.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// parse coerces a scalar value into a Duration.
func parse(v any) (Duration, error) {
	switch val := v.(type) {
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return 0, fmt.Errorf("parse duration %q: %w", val, err)
		}
		return Duration(parsed), nil
	case int:
		return Duration(time.Duration(val) * time.Second), nil
	case int64:
		return Duration(time.Duration(val) * time.Second), nil
	case float64:
		return Duration(val * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("invalid duration value %v", v)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := parse(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := parse(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
