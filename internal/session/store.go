package session

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message in a conversation. Turns are immutable
// once appended; ordering is chronological.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type conversation struct {
	mu    sync.Mutex
	turns []Turn
}

// Store holds per-user conversation history in process memory only.
//
// The user map is LRU-bounded: once more than maxUsers users are tracked,
// the least recently active conversation is evicted wholesale. Each
// conversation is additionally capped at maxTurns turns; the oldest turns
// are dropped first. Individual Get/Append/Clear calls are atomic, but
// ordering across calls for the same user is the caller's responsibility.
type Store struct {
	mu       sync.Mutex
	cache    *lru.Cache[int64, *conversation]
	maxTurns int
}

func NewStore(maxUsers, maxTurns int) (*Store, error) {
	if maxTurns <= 0 {
		return nil, fmt.Errorf("maxTurns must be positive, got %d", maxTurns)
	}
	cache, err := lru.New[int64, *conversation](maxUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &Store{cache: cache, maxTurns: maxTurns}, nil
}

func (s *Store) get(userID int64) *conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.cache.Get(userID); ok {
		return conv
	}
	conv := &conversation{}
	s.cache.Add(userID, conv)
	return conv
}

// Get returns a copy of the user's turns in chronological order. A user
// never seen before gets an empty history.
func (s *Store) Get(userID int64) []Turn {
	conv := s.get(userID)
	conv.mu.Lock()
	defer conv.mu.Unlock()
	out := make([]Turn, len(conv.turns))
	copy(out, conv.turns)
	return out
}

// Append adds one turn to the user's history, creating the conversation if
// absent and truncating oldest-first past the per-user cap.
func (s *Store) Append(userID int64, turn Turn) {
	conv := s.get(userID)
	conv.mu.Lock()
	defer conv.mu.Unlock()
	conv.turns = append(conv.turns, turn)
	if len(conv.turns) > s.maxTurns {
		conv.turns = conv.turns[len(conv.turns)-s.maxTurns:]
	}
}

// Clear resets the user's history to empty. The mapping entry survives, so
// a cleared session behaves exactly like a fresh one.
func (s *Store) Clear(userID int64) {
	conv := s.get(userID)
	conv.mu.Lock()
	defer conv.mu.Unlock()
	conv.turns = nil
}
