package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseFitnessProfile decodes a profile sent by the coach. The payload may
// be a JSON object or a JSON string holding one, and age may be a number
// or a numeric string.
func ParseFitnessProfile(raw json.RawMessage) (FitnessProfile, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = json.RawMessage(s)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return FitnessProfile{}, fmt.Errorf("decoding profile: %w", err)
	}

	str := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := fields[k]; ok && v != nil {
				return strings.TrimSpace(fmt.Sprint(v))
			}
		}
		return ""
	}

	p := FitnessProfile{
		Height:       str("height"),
		Weight:       str("weight"),
		FitnessLevel: str("fitness_level"),
		WorkoutTime:  str("workout_time"),
		Goal:         str("goal"),
		Preferences:  str("preferences", "preferences,"),
	}
	switch v := fields["age"].(type) {
	case float64:
		p.Age = int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil && v != "" {
			return FitnessProfile{}, fmt.Errorf("age %q is not a number", v)
		}
		p.Age = n
	}
	if p.Age < 0 {
		return FitnessProfile{}, fmt.Errorf("age %d is negative", p.Age)
	}
	return p, nil
}
