package statemachine

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Machine is an in-memory state machine over string-based states S and events E.
type Machine[S, E ~string] struct {
	mu          sync.Mutex
	current     S
	transitions map[S]map[E][]Transition[S, E]
	observers   []Observer[S, E]
}

func newMachine[S, E ~string](initial S) *Machine[S, E] {
	return &Machine[S, E]{
		current:     initial,
		transitions: make(map[S]map[E][]Transition[S, E]),
	}
}

// Current returns the current state.
func (m *Machine[S, E]) Current() S {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Is reports whether the current state is one of states.
func (m *Machine[S, E]) Is(states ...S) bool {
	return slices.Contains(states, m.Current())
}

func (m *Machine[S, E]) addTransition(t Transition[S, E]) error {
	if t.From == "" || t.To == "" || t.Event == "" {
		return ErrInvalidTransition
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transitions[t.From]; !ok {
		m.transitions[t.From] = make(map[E][]Transition[S, E])
	}
	// Multiple transitions allowed for same from/event to support guard-based branching
	m.transitions[t.From][t.Event] = append(m.transitions[t.From][t.Event], t)
	return nil
}

// Fire applies event to the current state.
//
// Actions run in registration order. The first failing action aborts the
// transition: later actions and observers do not run and the state is kept,
// but effects of earlier actions stay applied. Actions that can fail must
// therefore leave no partial effects, or be the only action on the transition.
func (m *Machine[S, E]) Fire(ctx context.Context, event E, data any) error {
	if event == "" {
		return ErrInvalidEvent
	}

	m.mu.Lock()
	from := m.current

	candidates := m.transitions[from][event]
	if len(candidates) == 0 {
		m.mu.Unlock()
		return &TransitionError{From: string(from), Event: string(event), Err: ErrNoTransition}
	}

	// First transition with passing guards wins (enables priority ordering)
	var chosen *Transition[S, E]
	for i := range candidates {
		if candidates[i].allowed(ctx, from, event, data) {
			chosen = &candidates[i]
			break
		}
	}
	if chosen == nil {
		m.mu.Unlock()
		return &TransitionError{From: string(from), Event: string(event), Err: ErrTransitionRejected}
	}

	for _, action := range chosen.Actions {
		if action == nil {
			continue
		}
		if err := action(ctx, from, chosen.To, event, data); err != nil {
			m.mu.Unlock()
			return fmt.Errorf("action failed: %w", err)
		}
	}

	m.current = chosen.To
	observers := m.observers
	m.mu.Unlock()

	for _, observe := range observers {
		observe(ctx, from, chosen.To, event)
	}
	return nil
}

// CanFire reports whether Fire would find an allowed transition for event.
func (m *Machine[S, E]) CanFire(ctx context.Context, event E, data any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.transitions[m.current][event] {
		if t.allowed(ctx, m.current, event, data) {
			return true
		}
	}
	return false
}
