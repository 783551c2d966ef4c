// Package client calls the fitcoach REST API. Every call is a single
// request with no retry.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/fitcoach/internal/models"
	"github.com/google/uuid"
)

// DefaultServerURL is used when no server is configured.
const DefaultServerURL = "http://localhost:8000"

// Messages shown in place of a coach reply when a request fails.
const (
	ConnectErrorMessage = "Sorry, I couldn't connect to the workout assistant."
	ProcessErrorMessage = "Sorry, I couldn't process your message."
)

// Client talks to a fitcoach server over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *slog.Logger
}

// New creates a client targeting baseURL. token, when set, is sent as a
// bearer ID token on registration.
func New(baseURL, token string, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        log,
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Path    string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Path, e.Status, e.Message)
}

// Unwrap maps 404s to models.ErrNotFound so callers can share error
// handling with the database layer.
func (e *StatusError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return models.ErrNotFound
	}
	return nil
}

func (c *Client) do(req *http.Request, path string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Detail string `json:"detail"`
			Error  string `json:"error"`
		}
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &e) == nil {
			if e.Detail != "" {
				msg = e.Detail
			} else if e.Error != "" {
				msg = e.Error
			}
		}
		return &StatusError{Path: path, Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("client: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	return c.do(req, path, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any, header ...string) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("client: marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	return c.do(req, path, out)
}

// CreateUser registers the user. Returns models.ErrUserExists when the
// subject is already registered.
func (c *Client) CreateUser(ctx context.Context, nu models.NewUser) (*models.User, error) {
	var header []string
	if c.token != "" {
		header = []string{"Authorization", "Bearer " + c.token}
	}
	var u models.User
	err := c.post(ctx, "/users/", nu, &u, header...)
	var se *StatusError
	if errors.As(err, &se) && se.Status == http.StatusBadRequest && se.Message == "User already exists" {
		return nil, models.ErrUserExists
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser fetches a user by subject.
func (c *Client) GetUser(ctx context.Context, auth0ID string) (*models.User, error) {
	var u models.User
	if err := c.get(ctx, "/users/"+url.PathEscape(auth0ID), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetProfile returns the user's profile with placeholders for missing
// fields. A failed fetch is logged and yields an all-placeholder profile.
func (c *Client) GetProfile(ctx context.Context, auth0ID string) models.ProfileView {
	var u models.User
	err := c.get(ctx, "/users/profile", url.Values{"auth0_id": {auth0ID}}, &u)
	if err != nil {
		c.log.Warn("fetching profile failed", "auth0_id", auth0ID, "error", err)
		return models.NewProfileView(nil, auth0ID)
	}
	return models.NewProfileView(&u, auth0ID)
}

// UpdateFitnessProfile stores onboarding answers. apiKey must match the
// server's auth.api_key.
func (c *Client) UpdateFitnessProfile(ctx context.Context, apiKey, auth0ID string, p models.FitnessProfile) error {
	body := map[string]any{"auth0_id": auth0ID, "profile_json": p}
	return c.post(ctx, "/users/update-fitness-profile", body, nil, "X-API-Key", apiKey)
}

type messageResponse struct {
	Message string `json:"message"`
}

// StartOnboarding opens a new coach conversation. On failure the returned
// reply is ConnectErrorMessage.
func (c *Client) StartOnboarding(ctx context.Context, auth0ID string) (string, error) {
	var resp messageResponse
	if err := c.post(ctx, "/onboarding/start_onboarding", map[string]string{"auth0_id": auth0ID}, &resp); err != nil {
		c.log.Warn("starting onboarding failed", "auth0_id", auth0ID, "error", err)
		return ConnectErrorMessage, err
	}
	return resp.Message, nil
}

// AddToConversation sends one user turn. On failure the returned reply is
// ProcessErrorMessage.
func (c *Client) AddToConversation(ctx context.Context, auth0ID, message string) (string, error) {
	var resp messageResponse
	body := map[string]string{"auth0_id": auth0ID, "message": message}
	if err := c.post(ctx, "/workouts/add_to_workout_conversation", body, &resp); err != nil {
		c.log.Warn("conversation turn failed", "auth0_id", auth0ID, "error", err)
		return ProcessErrorMessage, err
	}
	return resp.Message, nil
}

// Transcribe uploads a recording and returns its text.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("client: form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("client: reading audio: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("client: closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe/", &buf)
	if err != nil {
		return "", fmt.Errorf("client: create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var resp struct {
		Transcription string `json:"transcription"`
		Error         string `json:"error"`
	}
	if err := c.do(req, "/transcribe/", &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("client: transcription: %s", resp.Error)
	}
	return resp.Transcription, nil
}

// GeneratedWorkout is a stored workout plus its share link.
type GeneratedWorkout struct {
	WorkoutID uuid.UUID      `json:"workout_id"`
	Workout   models.Workout `json:"workout"`
	ShareURL  string         `json:"share_url"`
	Generated bool           `json:"generated"`
}

// GenerateWorkout asks the server for a new workout. typ may be empty.
func (c *Client) GenerateWorkout(ctx context.Context, auth0ID, preferences string, typ models.WorkoutType) (*GeneratedWorkout, error) {
	body := map[string]string{"auth0_id": auth0ID, "preferences": preferences}
	if typ != "" {
		body["type"] = string(typ)
	}
	var gw GeneratedWorkout
	if err := c.post(ctx, "/workout/generate", body, &gw); err != nil {
		return nil, err
	}
	return &gw, nil
}

// GetWorkout fetches a stored workout.
func (c *Client) GetWorkout(ctx context.Context, id uuid.UUID) (*models.StoredWorkout, error) {
	var sw models.StoredWorkout
	if err := c.get(ctx, "/workout/"+id.String(), nil, &sw); err != nil {
		return nil, err
	}
	return &sw, nil
}

// LogSession records a completed session against a stored workout.
func (c *Client) LogSession(ctx context.Context, l models.SessionLog) (models.SessionLog, error) {
	if l.WorkoutID == nil {
		return l, fmt.Errorf("client: session has no workout ID")
	}
	var out models.SessionLog
	if err := c.post(ctx, "/workout/"+l.WorkoutID.String()+"/sessions", l, &out); err != nil {
		return l, err
	}
	return out, nil
}

// QuerySessionLogs lists a user's completed sessions in [start, end).
func (c *Client) QuerySessionLogs(ctx context.Context, auth0ID string, start, end time.Time) ([]models.SessionLog, error) {
	params := url.Values{
		"start": {start.Format(time.RFC3339)},
		"end":   {end.Format(time.RFC3339)},
	}
	var logs []models.SessionLog
	if err := c.get(ctx, "/users/"+url.PathEscape(auth0ID)+"/sessions", params, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// Dashboard fetches the dashboard for a user.
func (c *Client) Dashboard(ctx context.Context, auth0ID string) (*models.Dashboard, error) {
	var d models.Dashboard
	if err := c.get(ctx, "/dashboard/"+url.PathEscape(auth0ID), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
