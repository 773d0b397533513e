package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"chatterm/internal/client/api"
	"chatterm/internal/client/chat"
	"chatterm/internal/client/config"
	"chatterm/internal/client/credstore"
	"chatterm/internal/client/models"
	"chatterm/internal/logging"
)

type scriptedClient struct {
	reply string
	sent  []string
}

func (c *scriptedClient) Login(context.Context, string, string) (*api.AuthResult, error) {
	return nil, nil
}
func (c *scriptedClient) Register(context.Context, string, string, string, string) (*api.AuthResult, error) {
	return nil, nil
}
func (c *scriptedClient) CurrentUser(context.Context) (*models.UserProfile, error) { return nil, nil }
func (c *scriptedClient) UpdateProfile(context.Context, api.ProfileUpdate) (*models.UserProfile, error) {
	return nil, nil
}
func (c *scriptedClient) ChangePassword(context.Context, string, string) (string, error) {
	return "", nil
}
func (c *scriptedClient) ValidateToken(context.Context) error { return nil }
func (c *scriptedClient) Chat(_ context.Context, message string) (string, error) {
	c.sent = append(c.sent, message)
	return c.reply, nil
}

type memHistory struct {
	logs map[string][]models.ChatMessage
}

func (m *memHistory) Replace(_ context.Context, userID string, msgs []models.ChatMessage) error {
	if m.logs == nil {
		m.logs = map[string][]models.ChatMessage{}
	}
	m.logs[userID] = append([]models.ChatMessage(nil), msgs...)
	return nil
}

func (m *memHistory) List(_ context.Context, userID string) ([]models.ChatMessage, error) {
	return m.logs[userID], nil
}

func chatTestApp(client api.Client) (*App, *memHistory) {
	logger := logging.NewDefault("error")
	repo := &memHistory{}
	return &App{
		client: client,
		repo:   repo,
		logger: logger,
		store:  credstore.New(credstore.NewMemoryBackend(), credstore.NewMemoryBackend(), logger),
		config: &config.Config{RequestTimeout: time.Second, ChatTimeout: time.Second},
	}, repo
}

func TestChatCommand_SendAndQuit(t *testing.T) {
	out := silencePrintln(t)
	client := &scriptedClient{reply: "hello there"}
	a, repo := chatTestApp(client)

	stubInputs(t, []string{"hi", "/quit"}, "", true)

	if err := a.Chat(context.Background()); err != nil {
		t.Fatalf("Chat err: %v", err)
	}
	if len(client.sent) != 1 || client.sent[0] != "hi" {
		t.Fatalf("sent mismatch: %v", client.sent)
	}

	joined := strings.Join(*out, "\n")
	if !strings.Contains(joined, chat.WelcomeText) {
		t.Fatalf("welcome not shown: %q", joined)
	}
	if !strings.Contains(joined, "hello there") {
		t.Fatalf("reply not shown: %q", joined)
	}

	// welcome + user + assistant persisted under the anonymous log
	if got := len(repo.logs[""]); got != 3 {
		t.Fatalf("persisted %d messages, want 3", got)
	}
}

func TestChatCommand_EmptyLineIgnored(t *testing.T) {
	silencePrintln(t)
	client := &scriptedClient{reply: "x"}
	a, _ := chatTestApp(client)

	stubInputs(t, []string{"   ", "/quit"}, "", true)

	if err := a.Chat(context.Background()); err != nil {
		t.Fatalf("Chat err: %v", err)
	}
	if len(client.sent) != 0 {
		t.Fatalf("blank line reached the backend: %v", client.sent)
	}
}

func TestChatCommand_ScopedByUser(t *testing.T) {
	silencePrintln(t)
	client := &scriptedClient{reply: "x"}
	a, repo := chatTestApp(client)
	a.store.Write("tok", &models.UserProfile{ID: "42", Email: "a@b.co"}, credstore.ScopeEphemeral)

	stubInputs(t, []string{"hi", "/quit"}, "", true)

	if err := a.Chat(context.Background()); err != nil {
		t.Fatalf("Chat err: %v", err)
	}
	if len(repo.logs["42"]) == 0 {
		t.Fatalf("log not scoped to user: %v", repo.logs)
	}
	if len(repo.logs[""]) != 0 {
		t.Fatalf("anonymous log written for a signed-in user: %v", repo.logs)
	}
}
