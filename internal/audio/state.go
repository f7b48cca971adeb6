package audio

import (
	"slices"
	"sync"
)

// PlayerState tracks where a narration run is in its lifecycle.
type PlayerState string

const (
	StateIdle      PlayerState = "idle"
	StateLoading   PlayerState = "loading"
	StatePlaying   PlayerState = "playing"
	StateCompleted PlayerState = "completed"
	StateCancelled PlayerState = "cancelled"
	StateFailed    PlayerState = "failed"
)

// validTransitions lists which state each state may move to. The three
// terminal states all lead back to Loading so a finished player can be
// reused for the next narration run.
var validTransitions = map[PlayerState][]PlayerState{
	StateIdle:      {StateLoading},
	StateLoading:   {StatePlaying, StateCancelled, StateFailed},
	StatePlaying:   {StateLoading, StateCompleted, StateCancelled, StateFailed},
	StateCompleted: {StateLoading},
	StateCancelled: {StateLoading},
	StateFailed:    {StateLoading},
}

type stateMachine struct {
	mu      sync.Mutex
	current PlayerState
}

func newStateMachine() *stateMachine {
	return &stateMachine{current: StateIdle}
}

func (sm *stateMachine) CanTransition(to PlayerState) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return slices.Contains(validTransitions[sm.current], to)
}

// Transition moves to the target state when the transition table allows
// it and reports whether the move happened.
func (sm *stateMachine) Transition(to PlayerState) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if !slices.Contains(validTransitions[sm.current], to) {
		return false
	}
	sm.current = to
	return true
}

func (sm *stateMachine) Current() PlayerState {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.current
}
