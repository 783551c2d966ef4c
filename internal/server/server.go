package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/claude/fitcoach/internal/coach"
	"github.com/claude/fitcoach/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Store is the persistence the HTTP API needs. *storage.DB satisfies it.
type Store interface {
	CreateUser(ctx context.Context, nu models.NewUser) (*models.User, error)
	GetUser(ctx context.Context, auth0ID string) (*models.User, error)
	UpdateFitnessProfile(ctx context.Context, auth0ID string, p models.FitnessProfile) error
	SaveWorkout(ctx context.Context, auth0ID string, w models.Workout) (uuid.UUID, error)
	GetWorkout(ctx context.Context, id uuid.UUID) (*models.StoredWorkout, error)
	ListWorkouts(ctx context.Context, auth0ID string, limit int) ([]models.StoredWorkout, error)
	LogSession(ctx context.Context, l models.SessionLog) (models.SessionLog, error)
	QuerySessionLogs(ctx context.Context, auth0ID string, start, end time.Time) ([]models.SessionLog, error)
}

// Coach runs conversations, transcription and workout generation.
// *coach.Service satisfies it.
type Coach interface {
	StartOnboarding(ctx context.Context, auth0ID string) (string, error)
	AddToConversation(ctx context.Context, auth0ID, message string) (string, error)
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
	GenerateWorkout(ctx context.Context, req coach.GenerateRequest) (models.Workout, bool)
}

// Options configures a Server.
type Options struct {
	// APIKey guards machine-to-machine routes.
	APIKey string
	// PublicURL prefixes workout share links.
	PublicURL string
	// Verifier, when set, requires a valid ID token on registration.
	Verifier TokenVerifier
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store  Store
	coach  Coach
	opts   Options
	log    *slog.Logger
	router chi.Router
	now    func() time.Time
	app    http.Handler
}

// New creates a new Server with all routes configured.
func New(store Store, c Coach, opts Options, log *slog.Logger) *Server {
	s := &Server{
		store:  store,
		coach:  c,
		opts:   opts,
		log:    log,
		router: chi.NewRouter(),
		now:    time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/", s.handleRoot)

	s.router.Route("/users", func(r chi.Router) {
		register := r.With()
		if s.opts.Verifier != nil {
			register = r.With(BearerAuth(s.opts.Verifier))
		}
		register.Post("/", s.handleCreateUser)
		r.Get("/profile", s.handleGetProfile)
		r.With(APIKeyAuth(s.opts.APIKey)).Post("/update-fitness-profile", s.handleUpdateFitnessProfile)
		r.Get("/{auth0_id}", s.handleGetUser)
		r.Get("/{auth0_id}/sessions", s.handleQuerySessions)
	})

	s.router.Post("/onboarding/start_onboarding", s.handleStartOnboarding)
	s.router.Post("/workouts/add_to_workout_conversation", s.handleAddToConversation)
	s.router.Post("/transcribe/", s.handleTranscribe)

	s.router.Route("/workout", func(r chi.Router) {
		r.Post("/generate", s.handleGenerateWorkout)
		r.Get("/{workout_id}", s.handleGetWorkout)
		r.Post("/{workout_id}/sessions", s.handleLogSession)
	})

	s.router.Get("/dashboard/{auth0_id}", s.handleDashboard)
}

// SetMCP mounts an MCP streamable-HTTP handler at /mcp, guarded by the
// API key.
func (s *Server) SetMCP(h http.Handler) {
	s.router.With(APIKeyAuth(s.opts.APIKey)).Handle("/mcp", h)
}

// SetFrontend mounts a built SPA filesystem.
// Unmatched routes serve index.html for client-side routing, as do browser
// navigations to / and /workout/{workout_id}.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)
	s.app = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.Clone(r.Context())
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		f, err := webFS.Open(r.URL.Path[1:])
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		s.app.ServeHTTP(w, r)
	})
}

// serveApp answers browser navigations with the SPA when one is mounted.
// It reports whether the request was handled.
func (s *Server) serveApp(w http.ResponseWriter, r *http.Request) bool {
	if s.app == nil || !strings.Contains(r.Header.Get("Accept"), "text/html") {
		return false
	}
	s.app.ServeHTTP(w, r)
	return true
}
