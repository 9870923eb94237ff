package session

import "sync"

// Registry maps user ids to sessions, creating them on first contact.
// There is no eviction: the population is a small fixed crew and state
// is process-lifetime only.
type Registry struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: map[int64]*Session{}}
}

// Get returns the session for the user, or nil if none exists yet.
func (r *Registry) Get(userID int64) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[userID]
}

// GetOrCreate returns the user's session, creating it on first sight.
// created tells the caller to seed clock state from the record store.
func (r *Registry) GetOrCreate(userID, chatID int64, username string) (s *Session, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userID]; ok {
		// Chat id can move when the user restarts the conversation.
		s.ChatID = chatID
		return s, false
	}
	s = &Session{UserID: userID, ChatID: chatID, Username: username}
	r.sessions[userID] = s
	return s, true
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
