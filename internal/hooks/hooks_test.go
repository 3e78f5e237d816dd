package hooks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmspell/llmspell/internal/hooks"
)

func TestSequentialStopsOnContinueFalse(t *testing.T) {
	reg := hooks.NewRegistry(hooks.DefaultCircuitBreakerConfig(), nil)
	var calls []string

	reg.Register(hooks.BeforeToolExec, &hooks.Hook{
		ID: "a", Priority: 10,
		Fn: func(ctx context.Context, hc *hooks.Context) (hooks.Result, error) {
			calls = append(calls, "a")
			return hooks.Result{Continue: false}, nil
		},
	})
	reg.Register(hooks.BeforeToolExec, &hooks.Hook{
		ID: "b", Priority: 1,
		Fn: func(ctx context.Context, hc *hooks.Context) (hooks.Result, error) {
			calls = append(calls, "b")
			return hooks.Result{Continue: true}, nil
		},
	})

	res, err := reg.Execute(context.Background(), hooks.BeforeToolExec, &hooks.Context{})
	require.NoError(t, err)
	assert.False(t, res.Continue)
	assert.Equal(t, []string{"a"}, calls)
}

func TestVotingRequiresMajority(t *testing.T) {
	reg := hooks.NewRegistry(hooks.DefaultCircuitBreakerConfig(), nil)
	reg.SetComposition(hooks.BeforeAgentExec, hooks.Voting)

	approve := func(ctx context.Context, hc *hooks.Context) (hooks.Result, error) {
		return hooks.Result{Approve: true}, nil
	}
	deny := func(ctx context.Context, hc *hooks.Context) (hooks.Result, error) {
		return hooks.Result{Approve: false}, nil
	}
	reg.Register(hooks.BeforeAgentExec, &hooks.Hook{ID: "a", Fn: approve})
	reg.Register(hooks.BeforeAgentExec, &hooks.Hook{ID: "b", Fn: approve})
	reg.Register(hooks.BeforeAgentExec, &hooks.Hook{ID: "c", Fn: deny})

	res, err := reg.Execute(context.Background(), hooks.BeforeAgentExec, &hooks.Context{})
	require.NoError(t, err)
	assert.True(t, res.Continue)
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cfg := hooks.DefaultCircuitBreakerConfig()
	cfg.ConsecutiveFailures = 2
	cfg.Cooldown = 50 * time.Millisecond
	cfg.HalfOpenProbes = 1

	cb := hooks.NewCircuitBreaker("flaky", cfg, nil)
	failing := func() error { return errors.New("boom") }

	require.Error(t, cb.Execute(context.Background(), failing))
	require.Error(t, cb.Execute(context.Background(), failing))
	assert.Equal(t, hooks.StateOpen, cb.State())

	// Still open: cooldown hasn't elapsed.
	err := cb.Execute(context.Background(), func() error { return nil })
	require.Error(t, err)

	time.Sleep(60 * time.Millisecond)
	require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
	assert.Equal(t, hooks.StateClosed, cb.State())
}

func TestRateLimiterCountsViolations(t *testing.T) {
	rl := hooks.NewRateLimiter(1, 1)
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())
	assert.Equal(t, int64(1), rl.Violations())
}
