package chat

import (
	"context"
	"sync"

	"lci-chatbot/internal/llm"
)

// defaultHistoryWindow is how many recent turns accompany each completion.
const defaultHistoryWindow = 10

// SessionID resolves the conversation key for a request. A user id wins over
// a canvas id; anonymous traffic shares the default session.
func SessionID(userID, canvasID string) string {
	if userID != "" {
		return userID
	}
	if canvasID != "" {
		return canvasID
	}
	return "default"
}

type session struct {
	mu    sync.Mutex
	turns []llm.Message
}

// HistoryStore keeps per-session conversation history in memory. Exchanges
// within one session are serialized so interleaved requests cannot corrupt
// the turn order.
type HistoryStore struct {
	mu       sync.RWMutex
	window   int
	sessions map[string]*session
}

// NewHistoryStore creates a store sending the last window turns to the model.
// A non-positive window falls back to the default of 10.
func NewHistoryStore(window int) *HistoryStore {
	if window <= 0 {
		window = defaultHistoryWindow
	}
	return &HistoryStore{
		window:   window,
		sessions: make(map[string]*session),
	}
}

func (h *HistoryStore) session(id string) *session {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	if !ok {
		s = &session{}
		h.sessions[id] = s
	}
	return s
}

// Exchange appends prompt as a user turn, invokes call with the recent turn
// window, and records the reply as an assistant turn. If call fails the user
// turn is rolled back so a retry does not see a dangling question.
func (h *HistoryStore) Exchange(ctx context.Context, sessionID, prompt string, call func(context.Context, []llm.Message) (string, error)) (string, error) {
	s := h.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, llm.Message{Role: llm.RoleUser, Content: prompt})

	recent := s.turns
	if len(recent) > h.window {
		recent = recent[len(recent)-h.window:]
	}

	answer, err := call(ctx, recent)
	if err != nil {
		s.turns = s.turns[:len(s.turns)-1]
		return "", err
	}

	s.turns = append(s.turns, llm.Message{Role: llm.RoleAssistant, Content: answer})
	return answer, nil
}

// ActiveSessions returns the number of sessions with at least one turn.
func (h *HistoryStore) ActiveSessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	active := 0
	for _, s := range h.sessions {
		s.mu.Lock()
		if len(s.turns) > 0 {
			active++
		}
		s.mu.Unlock()
	}
	return active
}

// TotalMessages returns the number of stored turns across all sessions.
func (h *HistoryStore) TotalMessages() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, s := range h.sessions {
		s.mu.Lock()
		total += len(s.turns)
		s.mu.Unlock()
	}
	return total
}
