package chat

import (
	"sync"

	"github.com/tanutchapol/backend-ChatBot/internal/model/chat"
)

// Service keeps per-session conversation history in process memory.
// Sessions are created lazily on first reference and live until cleared or restart.
type Service struct {
	mu       sync.RWMutex
	sessions map[string][]chat.Turn

	locksMu sync.Mutex
	locks   map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewService bootstraps the in-memory session store.
func NewService() *Service {
	return &Service{
		sessions: make(map[string][]chat.Turn),
		locks:    make(map[string]*sessionLock),
	}
}

// GetOrCreate returns a copy of the session history, registering an empty session if unseen.
func (s *Service) GetOrCreate(sessionID string) []chat.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, ok := s.sessions[sessionID]
	if !ok {
		turns = make([]chat.Turn, 0, 16)
		s.sessions[sessionID] = turns
	}
	return copyTurns(turns)
}

// Append adds a turn at the end of the session and returns the new history size.
func (s *Service) Append(sessionID string, turn chat.Turn) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = append(s.sessions[sessionID], turn)
	return len(s.sessions[sessionID])
}

// EnsureSystem inserts the system directive as the first turn unless the session already has one.
// It reports whether the turn was inserted.
func (s *Service) EnsureSystem(sessionID, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.sessions[sessionID]
	for _, t := range turns {
		if t.Role == chat.RoleSystem {
			return false
		}
	}

	withSystem := make([]chat.Turn, 0, len(turns)+1)
	withSystem = append(withSystem, chat.SystemTurn(content))
	withSystem = append(withSystem, turns...)
	s.sessions[sessionID] = withSystem
	return true
}

// History returns a copy of the stored turns; nil when the session is unknown.
func (s *Service) History(sessionID string) []chat.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	return copyTurns(turns)
}

// Clear removes the session entirely and reports whether it existed.
func (s *Service) Clear(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return ok
}

// Lock serializes work on one session. The returned func releases it.
func (s *Service) Lock(sessionID string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()

			s.locksMu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(s.locks, sessionID)
			}
			s.locksMu.Unlock()
		})
	}
}

func copyTurns(turns []chat.Turn) []chat.Turn {
	copied := make([]chat.Turn, len(turns))
	copy(copied, turns)
	return copied
}
