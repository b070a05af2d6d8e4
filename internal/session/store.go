package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskbrain-backend/internal/planner"
	"taskbrain-backend/internal/tasks"
)

// ErrNotFound means the session ID is unknown (or the server restarted;
// sessions are memory-only and die with the process).
var ErrNotFound = errors.New("session not found")

// State is the caller-held state from the product flow: the latest normalized
// task list and the latest ranking/plan derived from it. The engine itself
// keeps nothing between calls.
type State struct {
	Tasks     []tasks.Task
	Ranked    []tasks.Task
	Plan      *planner.DailyPlan
	CreatedAt time.Time
}

// Store is an in-memory session registry.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*State
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*State)}
}

// Create registers a new empty session and returns its ID.
func (s *Store) Create() string {
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &State{CreatedAt: time.Now()}
	s.mu.Unlock()

	return id
}

// Get returns a snapshot of the session state. Slices are copied so callers
// can never mutate stored state through the snapshot.
func (s *Store) Get(id string) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.sessions[id]
	if !ok {
		return State{}, ErrNotFound
	}
	return snapshot(st), nil
}

// SetTasks replaces the session's normalized task list and clears stale
// derived results.
func (s *Store) SetTasks(id string, list []tasks.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	st.Tasks = copyTasks(list)
	st.Ranked = nil
	st.Plan = nil
	return nil
}

// SetRanked stores the latest ranking and clears any plan built from the
// previous one.
func (s *Store) SetRanked(id string, ranked []tasks.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	st.Ranked = copyTasks(ranked)
	st.Plan = nil
	return nil
}

// SetPlan stores the latest daily plan.
func (s *Store) SetPlan(id string, plan planner.DailyPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	st.Plan = &plan
	return nil
}

func snapshot(st *State) State {
	out := State{
		Tasks:     copyTasks(st.Tasks),
		Ranked:    copyTasks(st.Ranked),
		CreatedAt: st.CreatedAt,
	}
	if st.Plan != nil {
		p := *st.Plan
		out.Plan = &p
	}
	return out
}

func copyTasks(list []tasks.Task) []tasks.Task {
	if list == nil {
		return nil
	}
	out := make([]tasks.Task, len(list))
	copy(out, list)
	return out
}
