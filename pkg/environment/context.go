package environment

import (
	"context"
	"strings"
)

// Environment represents the payment environment of a session.
type Environment string

const (
	// Production uses live prices and credentials.
	Production Environment = "production"
	// Sandbox uses test prices and credentials.
	Sandbox Environment = "sandbox"
)

// Parse maps an entry parameter to an Environment. Unknown values mean production.
func Parse(s string) Environment {
	if strings.EqualFold(strings.TrimSpace(s), string(Sandbox)) {
		return Sandbox
	}
	return Production
}

func (e Environment) String() string {
	return string(e)
}

// IsSandbox reports whether e is the sandbox environment.
func (e Environment) IsSandbox() bool {
	return e == Sandbox
}

type contextKey struct{}

// WithContext adds environment to context
func WithContext(ctx context.Context, env Environment) context.Context {
	return context.WithValue(ctx, contextKey{}, env)
}

// FromContext retrieves environment from context, defaulting to production.
func FromContext(ctx context.Context) Environment {
	if ctx == nil {
		return Production
	}
	env, ok := ctx.Value(contextKey{}).(Environment)
	if !ok {
		return Production
	}
	return env
}

// IsSandbox checks if the environment from context is sandbox
func IsSandbox(ctx context.Context) bool {
	return FromContext(ctx) == Sandbox
}
