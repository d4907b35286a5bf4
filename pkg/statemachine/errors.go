package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition   = errors.New("transition needs from, to and event")
	ErrInvalidEvent        = errors.New("event cannot be empty")
	ErrInvalidInitialState = errors.New("initial state cannot be empty")

	// ErrNoTransition means the current state has no transition for the event.
	ErrNoTransition = errors.New("no transition for event")
	// ErrTransitionRejected means every candidate transition failed a guard.
	ErrTransitionRejected = errors.New("transition rejected by guards")
)

// TransitionError describes a Fire call that left the state unchanged.
// It unwraps to ErrNoTransition or ErrTransitionRejected.
type TransitionError struct {
	From  string
	Event string
	Err   error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: state %q, event %q", e.Err, e.From, e.Event)
}

func (e *TransitionError) Unwrap() error { return e.Err }
