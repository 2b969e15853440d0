package hunt

import "sync"

// State is the step a user is at in the registration conversation.
type State int

const (
	StateNone State = iota
	StateAwaitingAuthToken
	StateAwaitingStudentID
)

func (s State) String() string {
	switch s {
	case StateAwaitingAuthToken:
		return "awaiting_auth_token"
	case StateAwaitingStudentID:
		return "awaiting_student_id"
	default:
		return "none"
	}
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// Sessions keeps the per-user conversation state and serializes the handling
// of updates coming from the same user.
//
// State lives in process memory only and is lost on restart.
type Sessions struct {
	mu     sync.Mutex
	states map[int64]State
	locks  map[int64]*userLock
}

func NewSessions() *Sessions {
	return &Sessions{
		states: make(map[int64]State),
		locks:  make(map[int64]*userLock),
	}
}

func (s *Sessions) State(userID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[userID]
}

// Set moves the user to state. Setting StateNone ends the conversation.
func (s *Sessions) Set(userID int64, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == StateNone {
		delete(s.states, userID)
		return
	}
	s.states[userID] = state
}

func (s *Sessions) End(userID int64) {
	s.Set(userID, StateNone)
}

// Active returns the number of users with an open conversation.
func (s *Sessions) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

// Lock blocks until no other update of userID is being handled and returns
// the function releasing the lock. Locks are dropped once unused.
func (s *Sessions) Lock(userID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, userID)
		}
		s.mu.Unlock()
	}
}
