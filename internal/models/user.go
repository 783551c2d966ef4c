package models

import (
	"strconv"
	"time"
)

// FitnessProfile holds the answers collected during onboarding.
type FitnessProfile struct {
	Height       string `json:"height,omitempty"`
	Weight       string `json:"weight,omitempty"`
	Age          int    `json:"age,omitempty"`
	FitnessLevel string `json:"fitness_level,omitempty"`
	WorkoutTime  string `json:"workout_time,omitempty"`
	Goal         string `json:"goal,omitempty"`
	Preferences  string `json:"preferences,omitempty"`
}

// IsEmpty reports whether no profile field has been filled in.
func (p FitnessProfile) IsEmpty() bool {
	return p == FitnessProfile{}
}

// User is a registered account keyed by the identity provider subject.
type User struct {
	ID          string         `json:"id"`
	Auth0ID     string         `json:"auth0_id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Preferences map[string]any `json:"preferences"`
	CreatedAt   time.Time      `json:"created_at"`

	Height       string `json:"height,omitempty"`
	Weight       string `json:"weight,omitempty"`
	Age          int    `json:"age,omitempty"`
	FitnessLevel string `json:"fitness_level,omitempty"`
	WorkoutTime  string `json:"workout_time,omitempty"`
	Goal         string `json:"goal,omitempty"`
	ProfileNotes string `json:"profile_notes,omitempty"`
}

// Profile returns the onboarding answers stored on u.
func (u *User) Profile() FitnessProfile {
	return FitnessProfile{
		Height:       u.Height,
		Weight:       u.Weight,
		Age:          u.Age,
		FitnessLevel: u.FitnessLevel,
		WorkoutTime:  u.WorkoutTime,
		Goal:         u.Goal,
		Preferences:  u.ProfileNotes,
	}
}

// NewUser is the registration payload sent after login.
type NewUser struct {
	Auth0ID     string         `json:"auth0_id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Preferences map[string]any `json:"preferences"`
}

// Placeholder texts shown when a profile field is missing.
const (
	NotSpecified       = "Not specified"
	FitnessLevelNotSet = "Fitness level not set"
	GoalNotSet         = "Goal not set"
)

// ProfileView is a user profile with every missing field replaced by its
// display placeholder.
type ProfileView struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Auth0ID      string `json:"auth0_id"`
	Height       string `json:"height"`
	Weight       string `json:"weight"`
	Age          string `json:"age"`
	FitnessLevel string `json:"fitness_level"`
	WorkoutTime  string `json:"workout_time"`
	Goal         string `json:"goal"`
	Found        bool   `json:"found"`
}

// NewProfileView builds a ProfileView. u may be nil when the profile could
// not be fetched; auth0ID is used for the identity in that case.
func NewProfileView(u *User, auth0ID string) ProfileView {
	if u == nil {
		u = &User{Auth0ID: auth0ID}
	}
	v := ProfileView{
		Name:         u.Name,
		Email:        u.Email,
		Auth0ID:      u.Auth0ID,
		Height:       orDefault(u.Height, NotSpecified),
		Weight:       orDefault(u.Weight, NotSpecified),
		Age:          NotSpecified,
		FitnessLevel: orDefault(u.FitnessLevel, FitnessLevelNotSet),
		WorkoutTime:  orDefault(u.WorkoutTime, NotSpecified),
		Goal:         orDefault(u.Goal, GoalNotSet),
		Found:        u.ID != "",
	}
	if u.Age > 0 {
		v.Age = strconv.Itoa(u.Age)
	}
	return v
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
