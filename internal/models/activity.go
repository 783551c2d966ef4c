package models

import "time"

// DayActivity is the workout volume for one calendar day.
type DayActivity struct {
	Day      string    `json:"day"`
	Date     time.Time `json:"date"`
	Minutes  int       `json:"minutes"`
	Sessions int       `json:"sessions"`
}

// WeeklyActivity buckets session logs into the seven days ending on the day
// containing now (in now's location), oldest first. Logs outside the window
// are ignored. Durations are summed in whole minutes, rounded down per day.
func WeeklyActivity(logs []SessionLog, now time.Time) []DayActivity {
	loc := now.Location()
	first := time.Date(now.Year(), now.Month(), now.Day()-6, 0, 0, 0, 0, loc)

	days := make([]DayActivity, 7)
	seconds := make([]int, 7)
	for i := range days {
		d := first.AddDate(0, 0, i)
		days[i] = DayActivity{Day: d.Weekday().String()[:3], Date: d}
	}

	for _, l := range logs {
		t := l.CompletedAt.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		for i := range days {
			if days[i].Date.Equal(day) {
				seconds[i] += l.DurationSec
				days[i].Sessions++
				break
			}
		}
	}
	for i := range days {
		days[i].Minutes = seconds[i] / 60
	}
	return days
}

// Dashboard is everything the dashboard screen shows for one user.
type Dashboard struct {
	Profile        ProfileView     `json:"profile"`
	WeeklyActivity []DayActivity   `json:"weekly_activity"`
	RecentWorkouts []StoredWorkout `json:"recent_workouts"`
}
