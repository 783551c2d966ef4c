package workout

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var durationRe = regexp.MustCompile(`^(\d+)\s*(minutes?|mins?|m|seconds?|secs?|s)?$`)

// ParseDuration converts an exercise duration such as "1 minute",
// "2 minutes", "45 seconds" or a bare "30" (seconds) to seconds.
func ParseDuration(s string) (int, error) {
	m := durationRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return 0, fmt.Errorf("unrecognised duration %q", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("duration %q: %w", s, err)
	}
	if strings.HasPrefix(m[2], "m") {
		n *= 60
	}
	if n <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return n, nil
}

// FormatDuration renders seconds the way workouts spell durations:
// whole minutes as "N minute(s)", everything else as "N seconds".
func FormatDuration(seconds int) string {
	switch {
	case seconds == 60:
		return "1 minute"
	case seconds > 0 && seconds%60 == 0:
		return fmt.Sprintf("%d minutes", seconds/60)
	case seconds == 1:
		return "1 second"
	}
	return fmt.Sprintf("%d seconds", seconds)
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
