package ecs

// GameState gates which systems run.
type GameState int

const (
	StateLoading GameState = iota
	StateMenu
	StatePlaying
	StatePaused
)

func (s GameState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateMenu:
		return "menu"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// State is the game state machine resource. Transitions requested with
// SetNext are applied by the scheduler at the start of its next update.
type State struct {
	current GameState
	next    GameState
	pending bool
}

// Current returns the active state.
func (s *State) Current() GameState {
	if s == nil {
		return StateLoading
	}
	return s.current
}

// SetNext queues a transition. The last request in a frame wins.
func (s *State) SetNext(next GameState) {
	if s == nil {
		return
	}
	s.next = next
	s.pending = true
}

// Pending returns the queued state, if any.
func (s *State) Pending() (GameState, bool) {
	if s == nil {
		return StateLoading, false
	}
	return s.next, s.pending
}

// apply performs the queued transition and reports the old state. A request
// for the current state is consumed without a transition.
func (s *State) apply() (GameState, bool) {
	if s == nil || !s.pending {
		return 0, false
	}
	s.pending = false
	if s.next == s.current {
		return 0, false
	}
	prev := s.current
	s.current = s.next
	return prev, true
}
