package telegram

import (
	"sync"

	searchDomain "github.com/reshetovitsme/goofish-monitor/internal/modules/search/domain"
)

// dialogTransitions is the forward transition table of the search-creation
// dialog. A state not present here only leaves via Reset.
var dialogTransitions = map[DialogState]DialogState{
	DialogStateAwaitingName:     DialogStateAwaitingTags,
	DialogStateAwaitingTags:     DialogStateAwaitingPriceMin,
	DialogStateAwaitingPriceMin: DialogStateAwaitingPriceMax,
	DialogStateAwaitingPriceMax: DialogStateAwaitingInterval,
	DialogStateAwaitingInterval: DialogStateAwaitingPhoto,
}

// Session holds one user's dialog state and the search draft being built.
type Session struct {
	State DialogState
	Draft *searchDomain.Search
}

// Advance moves the session to the next dialog state per the transition
// table. It reports whether a transition was defined for the current state.
func (s *Session) Advance() bool {
	next, ok := dialogTransitions[s.State]
	if !ok {
		return false
	}
	s.State = next
	return true
}

// SessionManager keeps per-user dialog sessions in memory, keyed by
// Telegram user id.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewSessionManager creates an empty session map
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[int64]*Session),
	}
}

// Update runs fn against the user's session while holding the manager lock,
// creating an idle session if absent. The bot dispatches updates
// concurrently, so every read and write of a session's state or draft goes
// through here; fn must not block and must not retain the session.
func (m *SessionManager) Update(userID int64, fn func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn(m.get(userID))
}

func (m *SessionManager) get(userID int64) *Session {
	session, ok := m.sessions[userID]
	if !ok {
		session = &Session{State: DialogStateIdle}
		m.sessions[userID] = session
	}
	return session
}

// Begin resets the user's session into the given state with a fresh draft.
func (m *SessionManager) Begin(userID int64, state DialogState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[userID] = &Session{
		State: state,
		Draft: &searchDomain.Search{UserID: userID},
	}
}

// Reset returns the user's session to idle and drops the draft.
func (m *SessionManager) Reset(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[userID] = &Session{State: DialogStateIdle}
}
