package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/fitcoach/internal/models"
	"github.com/google/uuid"
)

// newTestServer creates an httptest server that routes requests to handler
// functions keyed by method and path.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.EscapedPath()
		h, ok := handlers[key]
		if !ok {
			t.Errorf("unexpected request: %s", key)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func writeTestJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func testClient(url string) *Client {
	return New(url, "", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// TestCreateUser verifies the registration payload and the mapping of the
// duplicate-user response to models.ErrUserExists.
func TestCreateUser(t *testing.T) {
	calls := 0
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"POST /users/": func(w http.ResponseWriter, r *http.Request) {
			calls++
			if got := r.Header.Get("Authorization"); got != "Bearer id-token" {
				t.Errorf("Authorization = %q", got)
			}
			var nu models.NewUser
			json.NewDecoder(r.Body).Decode(&nu)
			if calls > 1 {
				writeTestJSON(w, http.StatusBadRequest, map[string]string{"detail": "User already exists"})
				return
			}
			writeTestJSON(w, http.StatusCreated, models.User{ID: "1", Auth0ID: nu.Auth0ID, Name: nu.Name})
		},
	})
	c := New(ts.URL, "id-token", slog.New(slog.NewTextHandler(io.Discard, nil)))

	u, err := c.CreateUser(context.Background(), models.NewUser{Auth0ID: "auth0|1", Name: "Sam"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Name != "Sam" {
		t.Errorf("name = %q", u.Name)
	}

	_, err = c.CreateUser(context.Background(), models.NewUser{Auth0ID: "auth0|1"})
	if !errors.Is(err, models.ErrUserExists) {
		t.Errorf("err = %v, want ErrUserExists", err)
	}
}

// TestGetUserEscapesSubject verifies subjects are path-escaped and 404s map
// to models.ErrNotFound.
func TestGetUserEscapesSubject(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"GET /users/auth0%7C1": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(w, http.StatusOK, models.User{ID: "1", Auth0ID: "auth0|1"})
		},
		"GET /users/ghost": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(w, http.StatusNotFound, map[string]string{"detail": "User not found"})
		},
	})
	c := testClient(ts.URL)

	u, err := c.GetUser(context.Background(), "auth0|1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Auth0ID != "auth0|1" {
		t.Errorf("auth0_id = %q", u.Auth0ID)
	}

	_, err = c.GetUser(context.Background(), "ghost")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Message != "User not found" {
		t.Errorf("status error = %+v", se)
	}
}

// TestGetProfileFallback verifies placeholders are returned when the fetch
// fails.
func TestGetProfileFallback(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"GET /users/profile": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("auth0_id"); got != "u1" {
				t.Errorf("auth0_id = %q", got)
			}
			http.Error(w, "boom", http.StatusInternalServerError)
		},
	})

	v := testClient(ts.URL).GetProfile(context.Background(), "u1")
	if v.Found || v.Height != models.NotSpecified || v.FitnessLevel != models.FitnessLevelNotSet || v.Goal != models.GoalNotSet {
		t.Errorf("profile = %+v", v)
	}
	if v.Auth0ID != "u1" {
		t.Errorf("auth0_id = %q", v.Auth0ID)
	}
}

// TestConversationFallbackMessages verifies failed coach calls return the
// user-facing apology strings.
func TestConversationFallbackMessages(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"POST /onboarding/start_onboarding": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no coach provider configured"})
		},
		"POST /workouts/add_to_workout_conversation": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream"})
		},
	})
	c := testClient(ts.URL)

	reply, err := c.StartOnboarding(context.Background(), "u1")
	if err == nil || reply != ConnectErrorMessage {
		t.Errorf("StartOnboarding = %q, %v", reply, err)
	}
	reply, err = c.AddToConversation(context.Background(), "u1", "hi")
	if err == nil || reply != ProcessErrorMessage {
		t.Errorf("AddToConversation = %q, %v", reply, err)
	}
}

// TestConversation verifies a successful turn returns the coach message.
func TestConversation(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"POST /workouts/add_to_workout_conversation": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["auth0_id"] != "u1" || body["message"] != "180 cm" {
				t.Errorf("body = %v", body)
			}
			writeTestJSON(w, http.StatusOK, map[string]string{"message": "And your weight?"})
		},
	})

	reply, err := testClient(ts.URL).AddToConversation(context.Background(), "u1", "180 cm")
	if err != nil {
		t.Fatalf("AddToConversation: %v", err)
	}
	if reply != "And your weight?" {
		t.Errorf("reply = %q", reply)
	}
}

// TestTranscribe verifies the multipart upload and both response shapes.
func TestTranscribe(t *testing.T) {
	fail := false
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"POST /transcribe/": func(w http.ResponseWriter, r *http.Request) {
			f, hdr, err := r.FormFile("file")
			if err != nil {
				t.Errorf("FormFile: %v", err)
				return
			}
			defer f.Close()
			data, _ := io.ReadAll(f)
			if hdr.Filename != "note.webm" || string(data) != "audio" {
				t.Errorf("upload = %q %q", hdr.Filename, data)
			}
			if fail {
				writeTestJSON(w, http.StatusOK, map[string]string{"error": "could not decode audio"})
				return
			}
			writeTestJSON(w, http.StatusOK, map[string]string{"transcription": "hello coach"})
		},
	})
	c := testClient(ts.URL)

	text, err := c.Transcribe(context.Background(), "note.webm", strings.NewReader("audio"))
	if err != nil || text != "hello coach" {
		t.Errorf("Transcribe = %q, %v", text, err)
	}

	fail = true
	if _, err := c.Transcribe(context.Background(), "note.webm", strings.NewReader("audio")); err == nil {
		t.Error("expected error for {error} response")
	}
}

// TestLoadWorkout verifies a fetched workout is used when valid and the
// built-in workout otherwise.
func TestLoadWorkout(t *testing.T) {
	good := uuid.New()
	empty := uuid.New()
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"GET /workout/" + good.String(): func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(w, http.StatusOK, models.StoredWorkout{ID: good, Workout: models.Workout{
				Type: models.RepBased, Name: "Custom",
				Exercises: []models.Exercise{{Name: "Squats", Reps: 10}},
			}})
		},
		"GET /workout/" + empty.String(): func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(w, http.StatusOK, models.StoredWorkout{ID: empty, Workout: models.Workout{Type: models.RepBased}})
		},
	})
	c := testClient(ts.URL)
	ctx := context.Background()

	w, id := c.LoadWorkout(ctx, good.String(), models.RepBased)
	if w.Name != "Custom" || id != good {
		t.Errorf("good: %q %v", w.Name, id)
	}

	w, id = c.LoadWorkout(ctx, empty.String(), models.TimeBased)
	if w.Name != "Full-Body Circuit" || id != uuid.Nil {
		t.Errorf("empty: %q %v", w.Name, id)
	}

	w, id = c.LoadWorkout(ctx, "not-a-uuid", models.RepBased)
	if w.Name != "Strength Training Circuit" || id != uuid.Nil {
		t.Errorf("invalid id: %q %v", w.Name, id)
	}
}

// TestLoadWorkoutUnreachable verifies the fallback when the server is down.
func TestLoadWorkoutUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	w, id := testClient(url).LoadWorkout(context.Background(), uuid.NewString(), models.RepBased)
	if w.Name != "Strength Training Circuit" || id != uuid.Nil {
		t.Errorf("got %q %v", w.Name, id)
	}
}

// TestGenerateAndLogSession verifies generation and session logging round
// trips against the REST contract.
func TestGenerateAndLogSession(t *testing.T) {
	id := uuid.New()
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"POST /workout/generate": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["type"] != "time-based" || body["preferences"] != "quick" {
				t.Errorf("body = %v", body)
			}
			writeTestJSON(w, http.StatusOK, map[string]any{
				"workout_id": id,
				"workout":    models.Workout{Name: "Quick", Type: models.TimeBased},
				"share_url":  "http://localhost:8000/workout/" + id.String(),
				"generated":  true,
			})
		},
		"POST /workout/" + id.String() + "/sessions": func(w http.ResponseWriter, r *http.Request) {
			var l models.SessionLog
			json.NewDecoder(r.Body).Decode(&l)
			if l.DurationSec != 300 || l.ExercisesCompleted != 4 {
				t.Errorf("log = %+v", l)
			}
			l.WorkoutName = "Quick"
			writeTestJSON(w, http.StatusCreated, l)
		},
	})
	c := testClient(ts.URL)
	ctx := context.Background()

	gw, err := c.GenerateWorkout(ctx, "u1", "quick", models.TimeBased)
	if err != nil {
		t.Fatalf("GenerateWorkout: %v", err)
	}
	if gw.WorkoutID != id || !gw.Generated || !strings.HasSuffix(gw.ShareURL, id.String()) {
		t.Errorf("generated = %+v", gw)
	}

	logged, err := c.LogSession(ctx, models.SessionLog{
		ID: uuid.New(), Auth0ID: "u1", WorkoutID: &gw.WorkoutID,
		ExercisesCompleted: 4, DurationSec: 300, CompletedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("LogSession: %v", err)
	}
	if logged.WorkoutName != "Quick" {
		t.Errorf("logged = %+v", logged)
	}

	if _, err := c.LogSession(ctx, models.SessionLog{Auth0ID: "u1"}); err == nil {
		t.Error("expected error without workout ID")
	}
}

// TestQuerySessionLogsAndDashboard verifies the range parameters and the
// dashboard decode.
func TestQuerySessionLogsAndDashboard(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"GET /users/u1/sessions": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("start"); got != "2026-03-01T00:00:00Z" {
				t.Errorf("start = %q", got)
			}
			writeTestJSON(w, http.StatusOK, []models.SessionLog{{Auth0ID: "u1", WorkoutName: "A"}})
		},
		"GET /dashboard/u1": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(w, http.StatusOK, models.Dashboard{
				Profile:        models.ProfileView{Auth0ID: "u1", Goal: "endurance"},
				WeeklyActivity: make([]models.DayActivity, 7),
			})
		},
	})
	c := testClient(ts.URL)

	logs, err := c.QuerySessionLogs(context.Background(), "u1", start, end)
	if err != nil || len(logs) != 1 {
		t.Fatalf("QuerySessionLogs = %v, %v", logs, err)
	}

	d, err := c.Dashboard(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Profile.Goal != "endurance" || len(d.WeeklyActivity) != 7 {
		t.Errorf("dashboard = %+v", d)
	}
}
