// Copyright 2026 The LLMSpell Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package hooks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/llmspell/llmspell/internal/errs"
)

// CircuitState is one of the three canonical breaker states.
type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig tunes when a breaker opens and how it recovers.
type CircuitBreakerConfig struct {
	// ConsecutiveFailures opens the breaker after this many failures in
	// a row. Zero disables the consecutive-failure trigger.
	ConsecutiveFailures int
	// FailureRateThreshold, combined with MinRequests, opens the
	// breaker once the failure rate within Window reaches it.
	FailureRateThreshold float64
	MinRequests          int
	Window               time.Duration
	// Cooldown is how long the breaker stays Open before allowing a
	// half-open probe.
	Cooldown time.Duration
	// HalfOpenProbes is how many trial executions are allowed while
	// half-open before the breaker decides to close or reopen.
	HalfOpenProbes int
}

// DefaultCircuitBreakerConfig mirrors a conservative, generally
// reasonable default: five in a row, or 50% failures within a
// one-minute window holding at least 20 requests, a 30s cooldown,
// three probes.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		ConsecutiveFailures:  5,
		FailureRateThreshold: 0.5,
		MinRequests:          20,
		Window:               time.Minute,
		Cooldown:             30 * time.Second,
		HalfOpenProbes:       3,
	}
}

type windowSample struct {
	at      time.Time
	success bool
}

// CircuitBreaker wraps one hook id's executions, opening after
// repeated or bursty failures and probing for recovery during a
// half-open phase before fully closing again.
type CircuitBreaker struct {
	id     string
	cfg    CircuitBreakerConfig
	logger *zap.Logger

	mu                sync.Mutex
	state             CircuitState
	consecutiveFails  int
	openedAt          time.Time
	halfOpenAttempts  int
	halfOpenSuccesses int
	samples           []windowSample
}

// NewCircuitBreaker constructs a breaker for hookID.
func NewCircuitBreaker(hookID string, cfg CircuitBreakerConfig, logger *zap.Logger) *CircuitBreaker {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.HalfOpenProbes <= 0 {
		cfg.HalfOpenProbes = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CircuitBreaker{id: hookID, cfg: cfg, logger: logger, state: StateClosed}
}

// State returns the breaker's current state.
func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Execute runs fn if the breaker currently permits it, recording the
// outcome. It returns a Resource-kind error without calling fn when
// the breaker is open and the cooldown has not yet elapsed.
func (b *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if !b.allow() {
		return errs.New(errs.Resource, "circuit breaker %q is open", b.id)
	}
	err := fn()
	b.record(err == nil)
	return err
}

func (b *CircuitBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(b.openedAt) >= b.cfg.Cooldown {
			b.transitionTo(StateHalfOpen)
			b.halfOpenAttempts = 1
			return true
		}
		return false
	case StateHalfOpen:
		if b.halfOpenAttempts >= b.cfg.HalfOpenProbes {
			return false
		}
		b.halfOpenAttempts++
		return true
	default:
		return true
	}
}

func (b *CircuitBreaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.samples = append(b.samples, windowSample{at: now, success: success})
	b.pruneLocked(now)

	switch b.state {
	case StateHalfOpen:
		if success {
			b.halfOpenSuccesses++
			if b.halfOpenSuccesses >= b.cfg.HalfOpenProbes {
				b.transitionTo(StateClosed)
			}
		} else {
			b.transitionTo(StateOpen)
		}
		return
	case StateOpen:
		return
	}

	if success {
		b.consecutiveFails = 0
		return
	}
	b.consecutiveFails++

	if b.cfg.ConsecutiveFailures > 0 && b.consecutiveFails >= b.cfg.ConsecutiveFailures {
		b.transitionTo(StateOpen)
		return
	}
	if b.cfg.MinRequests > 0 && len(b.samples) >= b.cfg.MinRequests {
		if b.failureRateLocked() >= b.cfg.FailureRateThreshold {
			b.transitionTo(StateOpen)
		}
	}
}

func (b *CircuitBreaker) failureRateLocked() float64 {
	if len(b.samples) == 0 {
		return 0
	}
	failures := 0
	for _, s := range b.samples {
		if !s.success {
			failures++
		}
	}
	return float64(failures) / float64(len(b.samples))
}

func (b *CircuitBreaker) pruneLocked(now time.Time) {
	cutoff := now.Add(-b.cfg.Window)
	i := 0
	for ; i < len(b.samples); i++ {
		if b.samples[i].at.After(cutoff) {
			break
		}
	}
	if i > 0 {
		b.samples = b.samples[i:]
	}
}

func (b *CircuitBreaker) transitionTo(s CircuitState) {
	if b.state == s {
		return
	}
	b.logger.Info("hooks: circuit breaker transition",
		zap.String("hook_id", b.id), zap.String("from", b.state.String()), zap.String("to", s.String()))
	b.state = s
	switch s {
	case StateOpen:
		b.openedAt = time.Now()
	case StateHalfOpen:
		b.halfOpenAttempts = 0
		b.halfOpenSuccesses = 0
	case StateClosed:
		b.consecutiveFails = 0
		b.samples = nil
	}
}
