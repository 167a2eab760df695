package conv

import "sync"

// State enumerates where a user's add-post conversation stands.
type State string

const (
	StateIdle            State = "idle"
	StateAwaitingContent State = "awaiting_content"
	StateAwaitingTime    State = "awaiting_time"
)

// session is one user's in-progress conversation: the current state and the
// provisional content gathered so far. It lives only until commit or cancel.
type session struct {
	state State
	draft draft
}

type draft struct {
	isPhoto  bool
	body     string
	photoRef string
	caption  string
}

// sessionTable holds per-user sessions. Keys are user ids, so one user's
// conversation never sees another's.
type sessionTable struct {
	mu     sync.Mutex
	byUser map[int64]*session
}

func newSessionTable() *sessionTable {
	return &sessionTable{byUser: make(map[int64]*session)}
}

// get returns a copy of the user's session; an absent session reads as idle.
func (t *sessionTable) get(userID int64) session {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.byUser[userID]; ok {
		return *s
	}
	return session{state: StateIdle}
}

// put stores the session for the user.
func (t *sessionTable) put(userID int64, s session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byUser[userID] = &s
}

// reset replaces any existing session with a fresh one in the given state.
func (t *sessionTable) reset(userID int64, state State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byUser[userID] = &session{state: state}
}

// evict discards the user's session entirely.
func (t *sessionTable) evict(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byUser, userID)
}
