package workout

import "github.com/claude/fitcoach/internal/models"

// Built-in workouts used whenever a workout cannot be fetched or generated.
var (
	repBasedFallback = models.Workout{
		Type:        models.RepBased,
		Name:        "Strength Training Circuit",
		Description: "A strength-focused workout targeting major muscle groups. Perform the specified number of repetitions for each exercise.",
		Exercises: []models.Exercise{
			{Name: "Push-Ups", Reps: 15, Description: "Perform push-ups to strengthen your chest, shoulders, and triceps."},
			{Name: "Squats", Reps: 20, Description: "Perform squats to strengthen your legs and glutes."},
			{Name: "Bicep Curls", Reps: 12, Description: "Perform bicep curls with dumbbells to strengthen your arms."},
			{Name: "Lunges", Reps: 10, Description: "Perform 10 lunges on each leg to target your quads and glutes."},
			{Name: "Sit-Ups", Reps: 20, Description: "Perform sit-ups to strengthen your core."},
		},
	}

	timeBasedFallback = models.Workout{
		Type:        models.TimeBased,
		Name:        "Full-Body Circuit",
		Duration:    "20 minutes",
		Description: "A full-body workout focusing on endurance and strength. Perform each exercise for the specified time, with minimal rest in between.",
		Exercises: []models.Exercise{
			{Name: "Jumping Jacks", Duration: "2 minutes", Description: "Perform jumping jacks to warm up and increase your heart rate."},
			{Name: "Plank Hold", Duration: "1 minute", Description: "Hold a plank position to strengthen your core."},
			{Name: "High Knees", Duration: "1 minute", Description: "Run in place, bringing your knees up to your chest."},
			{Name: "Mountain Climbers", Duration: "1 minute", Description: "Perform mountain climbers to work on your core and cardio."},
			{Name: "Rest", Duration: "1 minute", Description: "Take a short break to recover."},
		},
	}
)

// DefaultType is the workout type used when none is requested.
const DefaultType = models.RepBased

// Fallback returns a copy of the built-in workout for typ. Unknown types get
// the DefaultType workout.
func Fallback(typ models.WorkoutType) models.Workout {
	src := repBasedFallback
	if typ == models.TimeBased {
		src = timeBasedFallback
	}
	w := src
	w.Exercises = append([]models.Exercise(nil), src.Exercises...)
	return w
}
