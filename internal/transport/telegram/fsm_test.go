package telegram

import (
	"fmt"
	"sync"
	"testing"
)

// snapshot copies the session's state and draft out from under the lock.
func snapshot(m *SessionManager, userID int64) Session {
	var got Session
	m.Update(userID, func(s *Session) { got = *s })
	return got
}

func TestAdvance_FollowsDialogOrder(t *testing.T) {
	session := &Session{State: DialogStateAwaitingName}

	order := []DialogState{
		DialogStateAwaitingTags,
		DialogStateAwaitingPriceMin,
		DialogStateAwaitingPriceMax,
		DialogStateAwaitingInterval,
		DialogStateAwaitingPhoto,
	}

	for _, want := range order {
		if !session.Advance() {
			t.Fatalf("Advance() from %s returned false, want transition to %s", session.State, want)
		}
		if session.State != want {
			t.Fatalf("Advance() moved to %s, want %s", session.State, want)
		}
	}
}

func TestAdvance_TerminalStates(t *testing.T) {
	for _, state := range []DialogState{DialogStateIdle, DialogStateAwaitingPhoto, DialogStateAwaitingSearchPhoto} {
		session := &Session{State: state}
		if session.Advance() {
			t.Errorf("Advance() from %s should return false", state)
		}
		if session.State != state {
			t.Errorf("Advance() from terminal state %s must not change it, got %s", state, session.State)
		}
	}
}

func TestSessionManager_UpdateCreatesIdleSession(t *testing.T) {
	m := NewSessionManager()

	session := snapshot(m, 100)
	if session.State != DialogStateIdle {
		t.Errorf("new session state = %s, want idle", session.State)
	}
	if session.Draft != nil {
		t.Error("new session must not carry a draft")
	}
}

func TestSessionManager_Begin(t *testing.T) {
	m := NewSessionManager()

	m.Begin(100, DialogStateAwaitingName)
	session := snapshot(m, 100)
	if session.State != DialogStateAwaitingName {
		t.Errorf("Begin state = %s, want awaiting_name", session.State)
	}
	if session.Draft == nil || session.Draft.UserID != 100 {
		t.Error("Begin must seed a draft owned by the user")
	}

	// Sessions are independent per user.
	other := snapshot(m, 200)
	if other.State != DialogStateIdle {
		t.Errorf("other user's session state = %s, want idle", other.State)
	}
}

func TestSessionManager_Reset(t *testing.T) {
	m := NewSessionManager()

	m.Begin(100, DialogStateAwaitingTags)
	m.Reset(100)

	session := snapshot(m, 100)
	if session.State != DialogStateIdle {
		t.Errorf("state after Reset = %s, want idle", session.State)
	}
	if session.Draft != nil {
		t.Error("Reset must drop the draft")
	}
}

func TestSessionManager_UpdateSerializesMutations(t *testing.T) {
	m := NewSessionManager()
	m.Begin(100, DialogStateAwaitingTags)

	// Rapid messages from one user are dispatched on separate goroutines;
	// every draft mutation must land.
	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Update(100, func(s *Session) {
				s.Draft.Tags = append(s.Draft.Tags, fmt.Sprintf("tag-%d", i))
			})
		}(i)
	}
	wg.Wait()

	session := snapshot(m, 100)
	if got := len(session.Draft.Tags); got != writers {
		t.Errorf("draft holds %d tags after %d concurrent updates, want %d", got, writers, writers)
	}
}

func TestSessionManager_ConcurrentClaimHasOneWinner(t *testing.T) {
	m := NewSessionManager()
	m.Begin(100, DialogStateAwaitingPhoto)

	// A photo and a skip button arriving together must not both finish
	// the dialog with the same draft.
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Update(100, func(s *Session) {
				if s.State != DialogStateAwaitingPhoto {
					return
				}
				s.State = DialogStateIdle
				s.Draft = nil
				mu.Lock()
				claimed++
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	if claimed != 1 {
		t.Errorf("%d concurrent updates claimed the draft, want exactly 1", claimed)
	}
}
