package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/claude/fitcoach/internal/models"
	"github.com/go-chi/chi/v5"
)

// recentWorkoutsLimit is how many stored workouts the dashboard lists.
const recentWorkoutsLimit = 5

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if s.serveApp(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the fitness coach API"})
}

// handleDashboard never fails on a missing profile: absent fields are
// replaced with their placeholders.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	auth0ID := pathParam(r, "auth0_id")

	u, err := s.store.GetUser(r.Context(), auth0ID)
	if err != nil {
		if !isNotFound(err) {
			s.log.Warn("dashboard profile lookup failed", "auth0_id", auth0ID, "error", err)
		}
		u = nil
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	logs, err := s.store.QuerySessionLogs(r.Context(), auth0ID, today.AddDate(0, 0, -6), today.AddDate(0, 0, 1))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	recent, err := s.store.ListWorkouts(r.Context(), auth0ID, recentWorkoutsLimit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if recent == nil {
		recent = []models.StoredWorkout{}
	}

	writeJSON(w, http.StatusOK, models.Dashboard{
		Profile:        models.NewProfileView(u, auth0ID),
		WeeklyActivity: models.WeeklyActivity(logs, now),
		RecentWorkouts: recent,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// pathParam returns a decoded URL parameter. chi matches on RawPath when
// the request carries one, leaving the parameter escaped.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if dec, err := url.PathUnescape(v); err == nil {
		return dec
	}
	return v
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 7 days
		end = time.Now()
		start = end.AddDate(0, 0, -7)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
