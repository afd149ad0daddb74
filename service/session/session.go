// Package session holds per-conversation chat history. State is in-memory
// only; a restart starts every conversation fresh.
package session

import (
	"sync"

	"github.com/sonic-agent/sonicbot/service/llm"
)

// maxHistory bounds how many turns one conversation retains. Older turns
// are dropped from the front so the completion request stays small.
const maxHistory = 40

// Store maps conversation ids to ordered message history. All methods are
// safe for concurrent use; turn ordering within one conversation is the
// caller's responsibility (one in-flight turn per conversation).
type Store struct {
	mu       sync.Mutex
	sessions map[string][]llm.Message
}

func NewStore() *Store {
	return &Store{sessions: make(map[string][]llm.Message)}
}

// Append adds a message to the conversation, creating it if needed.
func (s *Store) Append(conversationID string, msg llm.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.sessions[conversationID], msg)
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	s.sessions[conversationID] = history
}

// History returns a copy of the conversation's messages in order.
func (s *Store) History(conversationID string) []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.sessions[conversationID]
	out := make([]llm.Message, len(history))
	copy(out, history)
	return out
}

// Reset discards the conversation's history.
func (s *Store) Reset(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, conversationID)
}

// Len reports how many messages the conversation currently holds.
func (s *Store) Len(conversationID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions[conversationID])
}
