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
	"sync/atomic"

	"golang.org/x/time/rate"
)

// RateLimiter is a token-bucket limiter for a single hook id, built on
// golang.org/x/time/rate. It additionally counts violations so callers
// can surface "hook X throttled N times" in diagnostics.
type RateLimiter struct {
	limiter    *rate.Limiter
	violations atomic.Int64
}

// NewRateLimiter builds a limiter refilling at ratePerSecond tokens
// per second with burst capacity burst.
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// Allow reports whether a call may proceed right now, consuming a
// token if so. A denied call increments Violations.
func (r *RateLimiter) Allow() bool {
	if r.limiter.Allow() {
		return true
	}
	r.violations.Add(1)
	return false
}

// Violations returns the number of calls denied since construction.
func (r *RateLimiter) Violations() int64 { return r.violations.Load() }
