package orchestrator

import (
	"encoding/json"
	"fmt"
	"sync"
)

// State is a pipeline run state.
type State int

const (
	StateIdle State = iota
	StateClassifying
	StateRejected
	StateGenerating
	StateConsolidating
	StateDone
	StateFailed
)

func (s State) String() string {
	names := [...]string{"idle", "classifying", "rejected", "generating", "consolidating", "done", "failed"}
	if s >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// MarshalJSON encodes the state by name.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateRejected || s == StateDone || s == StateFailed
}

// transitions is the complete set of legal moves. Failed has no way out; a
// caller must start a fresh run.
var transitions = map[State][]State{
	StateIdle:          {StateClassifying},
	StateClassifying:   {StateRejected, StateGenerating, StateFailed},
	StateGenerating:    {StateConsolidating, StateFailed},
	StateConsolidating: {StateDone, StateFailed},
}

// CanTransition reports whether from -> to is legal.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// StateMachine tracks the state of one run and rejects illegal moves.
type StateMachine struct {
	mu      sync.Mutex
	state   State
	history []State
}

// NewStateMachine returns a machine in StateIdle.
func NewStateMachine() *StateMachine {
	return &StateMachine{state: StateIdle, history: []State{StateIdle}}
}

// State returns the current state.
func (m *StateMachine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Transition moves to to, or returns an error if the move is illegal.
func (m *StateMachine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !CanTransition(m.state, to) {
		return fmt.Errorf("pipeline: illegal transition %s -> %s", m.state, to)
	}
	m.state = to
	m.history = append(m.history, to)
	return nil
}

// History returns every state visited, in order.
func (m *StateMachine) History() []State {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]State, len(m.history))
	copy(out, m.history)
	return out
}
