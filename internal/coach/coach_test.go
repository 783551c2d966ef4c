package coach

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/fitcoach/internal/models"
)

type memStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	convs    map[string][]models.Message
	profiles map[string]models.FitnessProfile
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*models.User{},
		convs:    map[string][]models.Message{},
		profiles: map[string]models.FitnessProfile{},
	}
}

func (m *memStore) GetUser(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u, nil
}

func (m *memStore) UpdateFitnessProfile(_ context.Context, id string, p models.FitnessProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return models.ErrNotFound
	}
	m.profiles[id] = p
	return nil
}

func (m *memStore) ConversationHistory(_ context.Context, id string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Message(nil), m.convs[id]...), nil
}

func (m *memStore) AppendMessages(_ context.Context, id string, msgs ...models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.convs[id] = append(m.convs[id], msgs...)
	return nil
}

func (m *memStore) ResetConversation(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.convs, id)
	return nil
}

// scriptedChat returns canned replies in order and records what it was sent.
type scriptedChat struct {
	replies []string
	err     error
	systems []string
	seen    [][]models.Message
}

func (c *scriptedChat) Complete(_ context.Context, system string, history []models.Message) (string, error) {
	c.systems = append(c.systems, system)
	c.seen = append(c.seen, append([]models.Message(nil), history...))
	if c.err != nil {
		return "", c.err
	}
	if len(c.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r, nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f fakeTranscriber) Transcribe(context.Context, string, []byte) (string, error) {
	return f.text, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartOnboardingResetsAndGreets(t *testing.T) {
	store := newMemStore()
	store.convs["u1"] = []models.Message{{Role: models.RoleUser, Content: "old"}}
	chat := &scriptedChat{replies: []string{"Welcome! How tall are you?"}}
	svc := New(store, chat, nil, testLogger())

	reply, err := svc.StartOnboarding(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Welcome! How tall are you?", reply)

	require.Len(t, chat.seen, 1)
	assert.Equal(t, []models.Message{{Role: models.RoleUser, Content: OnboardingGreeting}}, chat.seen[0])
	assert.Equal(t, onboardingInstruction, chat.systems[0])

	conv := store.convs["u1"]
	require.Len(t, conv, 2)
	assert.Equal(t, models.RoleUser, conv[0].Role)
	assert.Equal(t, OnboardingGreeting, conv[0].Content)
	assert.Equal(t, models.RoleAssistant, conv[1].Role)
}

func TestAddToConversationSendsHistory(t *testing.T) {
	store := newMemStore()
	chat := &scriptedChat{replies: []string{"How tall are you?", "And your weight?"}}
	svc := New(store, chat, nil, testLogger())
	ctx := context.Background()

	_, err := svc.StartOnboarding(ctx, "u1")
	require.NoError(t, err)
	reply, err := svc.AddToConversation(ctx, "u1", "180 cm")
	require.NoError(t, err)
	assert.Equal(t, "And your weight?", reply)

	require.Len(t, chat.seen, 2)
	second := chat.seen[1]
	require.Len(t, second, 3)
	assert.Equal(t, "180 cm", second[2].Content)
	assert.Len(t, store.convs["u1"], 4)
}

func TestAddToConversationStoresProfile(t *testing.T) {
	store := newMemStore()
	store.users["u1"] = &models.User{ID: "1", Auth0ID: "u1"}
	final := "Great, you're all set!\n```profile\n{\"height\":\"170 cm\",\"weight\":\"65 kg\",\"age\":28,\"fitness_level\":\"beginner\",\"workout_time\":\"30 minutes\",\"goal\":\"weight loss\",\"preferences\":\"no equipment\"}\n```"
	chat := &scriptedChat{replies: []string{final}}
	svc := New(store, chat, nil, testLogger())

	reply, err := svc.AddToConversation(context.Background(), "u1", "no equipment please")
	require.NoError(t, err)
	assert.Equal(t, "Great, you're all set!", reply)

	p, ok := store.profiles["u1"]
	require.True(t, ok, "profile not stored")
	assert.Equal(t, 28, p.Age)
	assert.Equal(t, "weight loss", p.Goal)
	assert.Equal(t, "Great, you're all set!", store.convs["u1"][1].Content)
}

func TestProfileForUnknownUserIsNotFatal(t *testing.T) {
	store := newMemStore()
	chat := &scriptedChat{replies: []string{"Done!\n```profile\n{\"goal\":\"endurance\"}\n```"}}
	svc := New(store, chat, nil, testLogger())

	reply, err := svc.AddToConversation(context.Background(), "ghost", "run more")
	require.NoError(t, err)
	assert.Equal(t, "Done!", reply)
	assert.Empty(t, store.profiles)
}

func TestConversationErrors(t *testing.T) {
	ctx := context.Background()

	svc := New(newMemStore(), nil, nil, testLogger())
	_, err := svc.StartOnboarding(ctx, "u1")
	assert.ErrorIs(t, err, ErrNoProvider)
	_, err = svc.AddToConversation(ctx, "u1", "hi")
	assert.ErrorIs(t, err, ErrNoProvider)
	_, err = svc.Transcribe(ctx, "a.webm", []byte("x"))
	assert.ErrorIs(t, err, ErrNoProvider)

	store := newMemStore()
	boom := errors.New("upstream down")
	svc = New(store, &scriptedChat{err: boom}, nil, testLogger())
	_, err = svc.AddToConversation(ctx, "u1", "hi")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.convs["u1"], "failed turns must not be recorded")
}

func TestTranscribe(t *testing.T) {
	svc := New(newMemStore(), nil, fakeTranscriber{text: "I am 180 cm tall"}, testLogger())
	text, err := svc.Transcribe(context.Background(), "recording.webm", []byte("audio"))
	require.NoError(t, err)
	assert.Equal(t, "I am 180 cm tall", text)

	svc = New(newMemStore(), nil, fakeTranscriber{err: errors.New("bad audio")}, testLogger())
	_, err = svc.Transcribe(context.Background(), "recording.webm", []byte("audio"))
	assert.ErrorContains(t, err, "bad audio")
}

func TestExtractProfile(t *testing.T) {
	reply, p, ok := ExtractProfile("Thanks!\n```profile\n{\"height\":\"5'10\\\"\",\"age\":\"40\"}\n```\nSee you soon.")
	require.True(t, ok)
	assert.Equal(t, "Thanks!\n\nSee you soon.", reply)
	assert.Equal(t, 40, p.Age)
	assert.Equal(t, "5'10\"", p.Height)

	reply, _, ok = ExtractProfile("What is your goal?")
	assert.False(t, ok)
	assert.Equal(t, "What is your goal?", reply)

	reply, _, ok = ExtractProfile("Bye\n```profile\nnot json\n```")
	assert.False(t, ok)
	assert.Equal(t, "Bye", reply)
}

// blockingChat holds every completion until release is closed.
type blockingChat struct {
	entered chan string
	release chan struct{}
}

func (b *blockingChat) Complete(_ context.Context, _ string, history []models.Message) (string, error) {
	b.entered <- history[len(history)-1].Content
	<-b.release
	return "ok", nil
}

func TestTurnWaitRespectsContext(t *testing.T) {
	chat := &blockingChat{entered: make(chan string, 2), release: make(chan struct{})}
	svc := New(newMemStore(), chat, nil, testLogger())

	done := make(chan error, 1)
	go func() {
		_, err := svc.AddToConversation(context.Background(), "u1", "first")
		done <- err
	}()
	require.Equal(t, "first", <-chat.entered)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.AddToConversation(ctx, "u1", "second")
	assert.ErrorIs(t, err, context.Canceled)

	// Another user is not held up by u1's turn.
	other := make(chan error, 1)
	go func() {
		_, err := svc.AddToConversation(context.Background(), "u2", "hello")
		other <- err
	}()
	require.Equal(t, "hello", <-chat.entered)

	close(chat.release)
	require.NoError(t, <-done)
	require.NoError(t, <-other)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Empty(t, svc.locks)
}
