package environment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/funnel/pkg/environment"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cases := map[string]environment.Environment{
		"sandbox":    environment.Sandbox,
		" Sandbox ":  environment.Sandbox,
		"production": environment.Production,
		"":           environment.Production,
		"staging":    environment.Production,
	}
	for in, want := range cases {
		assert.Equal(t, want, environment.Parse(in), "input %q", in)
	}
}

func TestContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Equal(t, environment.Production, environment.FromContext(ctx))
	assert.False(t, environment.IsSandbox(ctx))

	ctx = environment.WithContext(ctx, environment.Sandbox)
	assert.True(t, environment.IsSandbox(ctx))

	attr, ok := environment.LoggerExtractor()(ctx)
	assert.True(t, ok)
	assert.Equal(t, "sandbox", attr.Value.String())

	_, ok = environment.LoggerExtractor()(context.Background())
	assert.False(t, ok)
}
