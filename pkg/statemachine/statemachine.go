package statemachine

import (
	"context"
)

// Guard evaluates whether a transition should be allowed based on runtime conditions.
type Guard[S, E ~string] func(ctx context.Context, from S, event E, data any) bool

// Action executes side effects during a transition. Returning an error prevents it.
type Action[S, E ~string] func(ctx context.Context, from, to S, event E, data any) error

// Observer is notified after every completed transition.
type Observer[S, E ~string] func(ctx context.Context, from, to S, event E)

// Transition defines a state change triggered by an event, with optional guards and actions.
type Transition[S, E ~string] struct {
	From    S
	To      S
	Event   E
	Guards  []Guard[S, E]  // All must pass for transition to proceed
	Actions []Action[S, E] // Executed in order before state change
}

func (t Transition[S, E]) allowed(ctx context.Context, from S, event E, data any) bool {
	for _, guard := range t.Guards {
		if guard != nil && !guard(ctx, from, event, data) {
			return false
		}
	}
	return true
}
