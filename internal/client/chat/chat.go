// Package chat maintains the ordered conversation log and the round trip to
// the chat endpoint. Sends are single-flight: while one is outstanding a new
// send is rejected, not queued. Failures never surface as errors in the log;
// they become fixed-text assistant messages so the conversation always stays
// consistent and continuable.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"chatterm/internal/client/api"
	"chatterm/internal/client/history"
	"chatterm/internal/client/models"
	"chatterm/internal/logging"
)

// Fixed assistant texts. Timeout and generic failure are deliberately
// distinct so the two paths can be told apart.
const (
	WelcomeText    = "Hi! It's nice to meet you. How can I help you today?"
	TimeoutText    = "Request timed out. Try again."
	FailureText    = "Unable to get AI response. Check server or network."
	EmptyReplyText = "I didn't get a response. Please try again."
)

// DefaultTimeout bounds the chat round trip.
const DefaultTimeout = 20 * time.Second

var (
	// ErrEmptyMessage rejects a send whose text trims to nothing.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrSendInFlight rejects a send while a prior one is outstanding.
	ErrSendInFlight = errors.New("a send is already in progress")
)

// Session is one user's conversation. Safe for concurrent use; the log is
// persisted wholesale after every append, and a persistence failure leaves
// the in-memory log authoritative.
type Session struct {
	client  api.Client
	repo    history.Repository
	logger  logging.Logger
	userID  string
	timeout time.Duration

	mu       sync.Mutex
	messages []models.ChatMessage
	inFlight bool
}

// NewSession builds a session for userID (empty for anonymous chat).
// timeout <= 0 means DefaultTimeout.
func NewSession(client api.Client, repo history.Repository, logger logging.Logger, userID string, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Session{
		client:  client,
		repo:    repo,
		logger:  logger,
		userID:  userID,
		timeout: timeout,
	}
}

// Load restores the persisted log, seeding the welcome message when the
// user has no history yet. A storage failure starts an empty (but usable)
// conversation.
func (s *Session) Load(ctx context.Context) {
	msgs, err := s.repo.List(ctx, s.userID)
	if err != nil {
		s.logger.Warn(ctx, "chat history unavailable, starting fresh", "error", err)
		msgs = nil
	}
	if len(msgs) == 0 {
		msgs = []models.ChatMessage{models.NewChatMessage(models.SenderAssistant, WelcomeText)}
	}
	s.mu.Lock()
	s.messages = msgs
	s.mu.Unlock()
	s.persist(ctx)
}

// Messages returns a copy of the current log in display order.
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Send appends the user message immediately, performs the round trip, and
// appends exactly one assistant message: the reply, the timeout text, or
// the generic failure text. A reply arriving after the timeout fired is
// discarded, never appended.
func (s *Session) Send(ctx context.Context, text string) (models.ChatMessage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return models.ChatMessage{}, ErrSendInFlight
	}
	s.inFlight = true
	userMsg := models.NewChatMessage(models.SenderUser, trimmed)
	s.messages = append(s.messages, userMsg)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	s.persist(ctx)

	type result struct {
		reply string
		err   error
	}
	// Buffered so a reply that loses the race parks in the channel and is
	// dropped with it, instead of leaking the goroutine.
	resCh := make(chan result, 1)
	go func() {
		reply, err := s.client.Chat(ctx, trimmed)
		resCh <- result{reply: reply, err: err}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	var replyText string
	select {
	case r := <-resCh:
		switch {
		case r.err != nil:
			s.logger.Warn(ctx, "chat request failed", "error", r.err)
			replyText = FailureText
		case strings.TrimSpace(r.reply) == "":
			replyText = EmptyReplyText
		default:
			replyText = r.reply
		}
	case <-timer.C:
		s.logger.Warn(ctx, "chat request timed out", "timeout", s.timeout)
		replyText = TimeoutText
	}

	botMsg := models.NewChatMessage(models.SenderAssistant, replyText)
	s.mu.Lock()
	s.messages = append(s.messages, botMsg)
	s.mu.Unlock()
	s.persist(ctx)

	return botMsg, nil
}

// persist writes the whole log. Failure is logged and swallowed; the
// in-memory log stays authoritative for this process.
func (s *Session) persist(ctx context.Context) {
	snapshot := s.Messages()
	if err := s.repo.Replace(ctx, s.userID, snapshot); err != nil {
		s.logger.Warn(ctx, "chat history persist failed", "error", err)
	}
}
