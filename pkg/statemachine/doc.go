// Package statemachine implements a small generic finite state machine with
// guarded transitions.
//
// States and events are any string-based types, so callers keep their own closed
// enumerations and get compile-time checking instead of string comparisons:
//
//	type State string
//	type Event string
//
//	m := statemachine.MustNew[State, Event]("idle",
//	    statemachine.WithTransition[State, Event]("idle", "open", "start"),
//	)
//	_ = m.Fire(ctx, "start", nil)
//
// Several transitions may share the same source state and event. They are tried
// in registration order and the first one whose guards all pass wins, which lets a
// single event branch on runtime conditions.
//
// Actions run after the guards and before the state changes. An action error aborts
// the transition and leaves the current state untouched. Effects of actions that
// already ran are not rolled back, so a fallible action must be all-or-nothing.
//
// A failed Fire returns a *TransitionError wrapping ErrNoTransition (nothing defined
// for this event here) or ErrTransitionRejected (defined, but every guard said no).
// Callers often treat the first as an ignorable stray signal.
//
// Machine guards its state with a mutex. Guards, actions and observers run while the
// lock is held and must not call back into the same machine.
package statemachine
