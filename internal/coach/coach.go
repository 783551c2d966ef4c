// Package coach runs the conversational fitness coach: onboarding
// conversations that end in a stored fitness profile, audio transcription,
// and workout generation from that profile.
package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/claude/fitcoach/internal/models"
)

// OnboardingGreeting is the opening user turn of every onboarding
// conversation.
const OnboardingGreeting = "Hi! Help me with my fitness."

// ErrNoProvider is returned when no language model is configured.
var ErrNoProvider = errors.New("no coach provider configured")

// ChatModel completes a conversation given a system instruction.
type ChatModel interface {
	Complete(ctx context.Context, system string, history []models.Message) (string, error)
}

// Transcriber converts recorded speech to text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
}

// Store is the persistence the coach needs. *storage.DB satisfies it.
type Store interface {
	GetUser(ctx context.Context, auth0ID string) (*models.User, error)
	UpdateFitnessProfile(ctx context.Context, auth0ID string, p models.FitnessProfile) error
	ConversationHistory(ctx context.Context, auth0ID string) ([]models.Message, error)
	AppendMessages(ctx context.Context, auth0ID string, msgs ...models.Message) error
	ResetConversation(ctx context.Context, auth0ID string) error
}

// Service holds conversations for all users. Turns for one user are
// serialized; different users proceed in parallel.
type Service struct {
	store Store
	chat  ChatModel
	stt   Transcriber
	log   *slog.Logger

	mu    sync.Mutex
	locks map[string]*userLock
}

// userLock serializes one user's turns. refs counts holders and waiters;
// the entry is dropped when it reaches zero.
type userLock struct {
	held chan struct{}
	refs int
}

// New creates a coach. chat and stt may be nil, in which case the
// corresponding operations return ErrNoProvider.
func New(store Store, chat ChatModel, stt Transcriber, log *slog.Logger) *Service {
	return &Service{
		store: store,
		chat:  chat,
		stt:   stt,
		log:   log,
		locks: make(map[string]*userLock),
	}
}

// lock waits for the user's turn or for ctx to end.
func (s *Service) lock(ctx context.Context, auth0ID string) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[auth0ID]
	if !ok {
		l = &userLock{held: make(chan struct{}, 1)}
		s.locks[auth0ID] = l
	}
	l.refs++
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, auth0ID)
		}
		s.mu.Unlock()
	}

	select {
	case l.held <- struct{}{}:
		return func() {
			<-l.held
			release()
		}, nil
	case <-ctx.Done():
		release()
		return nil, ctx.Err()
	}
}

// StartOnboarding discards any previous conversation for the user and
// opens a new one with the standard greeting. Returns the coach's reply.
func (s *Service) StartOnboarding(ctx context.Context, auth0ID string) (string, error) {
	if s.chat == nil {
		return "", ErrNoProvider
	}
	unlock, err := s.lock(ctx, auth0ID)
	if err != nil {
		return "", err
	}
	defer unlock()

	if err := s.store.ResetConversation(ctx, auth0ID); err != nil {
		return "", fmt.Errorf("resetting conversation: %w", err)
	}
	return s.turn(ctx, auth0ID, nil, OnboardingGreeting)
}

// AddToConversation appends a user message to the conversation and returns
// the coach's reply. When the reply concludes onboarding, the collected
// profile is stored on the user.
func (s *Service) AddToConversation(ctx context.Context, auth0ID, message string) (string, error) {
	if s.chat == nil {
		return "", ErrNoProvider
	}
	unlock, err := s.lock(ctx, auth0ID)
	if err != nil {
		return "", err
	}
	defer unlock()

	history, err := s.store.ConversationHistory(ctx, auth0ID)
	if err != nil {
		return "", fmt.Errorf("loading conversation: %w", err)
	}
	return s.turn(ctx, auth0ID, history, message)
}

func (s *Service) turn(ctx context.Context, auth0ID string, history []models.Message, message string) (string, error) {
	userMsg := models.Message{Role: models.RoleUser, Content: message}
	raw, err := s.chat.Complete(ctx, onboardingInstruction, append(history, userMsg))
	if err != nil {
		return "", fmt.Errorf("completing conversation: %w", err)
	}

	reply, profile, found := ExtractProfile(raw)
	if found {
		if err := s.store.UpdateFitnessProfile(ctx, auth0ID, profile); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				s.log.Warn("profile collected for unregistered user", "auth0_id", auth0ID)
			} else {
				return "", fmt.Errorf("storing profile: %w", err)
			}
		} else {
			s.log.Info("fitness profile stored", "auth0_id", auth0ID)
		}
	}

	if err := s.store.AppendMessages(ctx, auth0ID, userMsg,
		models.Message{Role: models.RoleAssistant, Content: reply}); err != nil {
		return "", fmt.Errorf("saving conversation: %w", err)
	}
	return reply, nil
}

// Transcribe converts an uploaded recording to text.
func (s *Service) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	if s.stt == nil {
		return "", ErrNoProvider
	}
	text, err := s.stt.Transcribe(ctx, filename, audio)
	if err != nil {
		return "", fmt.Errorf("transcribing %s: %w", filename, err)
	}
	return text, nil
}
