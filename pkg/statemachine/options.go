package statemachine

import (
	"fmt"
)

// Option configures a state machine during construction.
type Option[S, E ~string] func(*Machine[S, E]) error

// TransitionOption configures a single transition with guards and actions.
type TransitionOption[S, E ~string] func(*Transition[S, E])

// New creates a state machine with the given initial state and options.
func New[S, E ~string](initial S, opts ...Option[S, E]) (*Machine[S, E], error) {
	if initial == "" {
		return nil, ErrInvalidInitialState
	}

	m := newMachine[S, E](initial)
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is like New but panics on misconfiguration.
func MustNew[S, E ~string](initial S, opts ...Option[S, E]) *Machine[S, E] {
	m, err := New(initial, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return m
}

// WithTransition adds a single transition to the state machine.
func WithTransition[S, E ~string](from, to S, event E, opts ...TransitionOption[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) error {
		t := Transition[S, E]{From: from, To: to, Event: event}
		for _, opt := range opts {
			opt(&t)
		}
		if err := m.addTransition(t); err != nil {
			return fmt.Errorf("failed to add transition %q->%q on %q: %w", from, to, event, err)
		}
		return nil
	}
}

// WithTransitionFrom adds the same transition for several source states.
func WithTransitionFrom[S, E ~string](from []S, to S, event E, opts ...TransitionOption[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) error {
		for _, f := range from {
			if err := WithTransition(f, to, event, opts...)(m); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithObserver registers a callback run after each completed transition.
func WithObserver[S, E ~string](observer Observer[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) error {
		if observer != nil {
			m.observers = append(m.observers, observer)
		}
		return nil
	}
}

// WithGuard adds a guard to a transition.
func WithGuard[S, E ~string](guard Guard[S, E]) TransitionOption[S, E] {
	return func(t *Transition[S, E]) {
		if guard != nil {
			t.Guards = append(t.Guards, guard)
		}
	}
}

// WithAction adds an action to a transition.
func WithAction[S, E ~string](action Action[S, E]) TransitionOption[S, E] {
	return func(t *Transition[S, E]) {
		if action != nil {
			t.Actions = append(t.Actions, action)
		}
	}
}
