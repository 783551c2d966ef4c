package models

import "testing"

// TestNewProfileViewPlaceholders verifies that a missing profile renders
// with the display placeholders instead of empty strings.
func TestNewProfileViewPlaceholders(t *testing.T) {
	v := NewProfileView(nil, "auth0|abc")
	if v.Found {
		t.Error("found = true, want false")
	}
	if v.Auth0ID != "auth0|abc" {
		t.Errorf("auth0_id = %q, want %q", v.Auth0ID, "auth0|abc")
	}
	if v.Height != NotSpecified || v.Weight != NotSpecified || v.Age != NotSpecified {
		t.Errorf("height/weight/age = %q/%q/%q, want placeholders", v.Height, v.Weight, v.Age)
	}
	if v.FitnessLevel != FitnessLevelNotSet {
		t.Errorf("fitness_level = %q, want %q", v.FitnessLevel, FitnessLevelNotSet)
	}
	if v.Goal != GoalNotSet {
		t.Errorf("goal = %q, want %q", v.Goal, GoalNotSet)
	}
}

// TestNewProfileViewFilled verifies that stored values pass through unchanged.
func TestNewProfileViewFilled(t *testing.T) {
	u := &User{
		ID:      "7",
		Auth0ID: "auth0|abc",
		Name:    "Sam",

		Height:       "180 cm",
		Age:          31,
		FitnessLevel: "intermediate",
		Goal:         "muscle gain",
	}
	v := NewProfileView(u, "")
	if !v.Found {
		t.Error("found = false, want true")
	}
	if v.Height != "180 cm" || v.Age != "31" {
		t.Errorf("height/age = %q/%q, want 180 cm/31", v.Height, v.Age)
	}
	if v.Weight != NotSpecified {
		t.Errorf("weight = %q, want placeholder", v.Weight)
	}
	if v.FitnessLevel != "intermediate" || v.Goal != "muscle gain" {
		t.Errorf("level/goal = %q/%q", v.FitnessLevel, v.Goal)
	}
}

// TestParseWorkoutType verifies the accepted spellings of both workout types.
func TestParseWorkoutType(t *testing.T) {
	cases := map[string]WorkoutType{
		"time-based":       TimeBased,
		"TIME BASED":       TimeBased,
		"rep-based":        RepBased,
		"REPETITION BASED": RepBased,
	}
	for in, want := range cases {
		got, err := ParseWorkoutType(in)
		if err != nil {
			t.Errorf("ParseWorkoutType(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseWorkoutType(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseWorkoutType("interval"); err == nil {
		t.Error("expected error for unknown type")
	}
}
