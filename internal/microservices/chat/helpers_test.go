package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"chathub/internal/microservices/http-api/models"

	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory ChatMessageRepository with an optional
// failure mode for exercising the best-effort persistence contract.
type fakeStore struct {
	mu         sync.Mutex
	inserts    []*models.ChatMessage
	deletes    []string
	attempts   int
	failInsert bool
}

func (s *fakeStore) Insert(ctx context.Context, message *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.failInsert {
		return errors.New("store is down")
	}
	s.inserts = append(s.inserts, message)
	return nil
}

func (s *fakeStore) GetByRoomID(ctx context.Context, roomID string, limit int) ([]models.ChatMessage, error) {
	return nil, nil
}

func (s *fakeStore) DeleteByMessageID(ctx context.Context, roomID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, messageID)
	return nil
}

func (s *fakeStore) insertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inserts)
}

func (s *fakeStore) attemptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// fakeBot records every command the router forwards.
type fakeBot struct {
	mu       sync.Mutex
	commands []string
	active   bool
	err      error
}

func (b *fakeBot) HandleCommand(roomID, rawCommand, userID, username string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.commands = append(b.commands, rawCommand)
	return nil
}

func (b *fakeBot) IsActive(roomID string) bool { return b.active }

func (b *fakeBot) Status(roomID string) any { return nil }

func (b *fakeBot) received() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.commands...)
}

func newTestSession(store ChatMessageRepository, bot BotAdapter) (*SessionManager, *MessageSink) {
	sink := NewMessageSink(store, 16)
	sm := NewSessionManager(NewRegistry(nil), store, sink, bot, nil)
	return sm, sink
}

func newTestClient(sm *SessionManager, username, role string, authed bool) *Client {
	return NewClient(Identity{
		UserID:        "id-" + username,
		Username:      username,
		Role:          role,
		Level:         1,
		Authenticated: authed,
	}, nil, sm, 16)
}

// recvFrame mirrors the outbound envelope with the payload left raw.
type recvFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// drainFrames empties a client's send buffer. Everything the session
// loop enqueued is already there because handling is synchronous.
func drainFrames(t *testing.T, c *Client) []recvFrame {
	t.Helper()
	var out []recvFrame
	for {
		select {
		case raw := <-c.Send:
			var f recvFrame
			require.NoError(t, json.Unmarshal(raw, &f))
			out = append(out, f)
		default:
			return out
		}
	}
}

func framesFor(frames []recvFrame, event string) []json.RawMessage {
	var out []json.RawMessage
	for _, f := range frames {
		if f.Event == event {
			out = append(out, f.Data)
		}
	}
	return out
}

func decodeMessage(t *testing.T, raw json.RawMessage) Message {
	t.Helper()
	var m Message
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}
