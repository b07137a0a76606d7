// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ratelimit

import (
	"context"
	"sync"
	"time"

	"foundermatch/modules/clock"

	"golang.org/x/time/rate"
)

var _ RateLimiter = (*TokenBucketRateLimiter)(nil)

// TokenBucketRateLimiter keeps one golang.org/x/time/rate bucket per key in
// process memory. Buckets hold limit tokens and refill limit tokens per window.
//
// State is per process, so it suits single instance deployments and tests.
type TokenBucketRateLimiter struct {
	clock  clock.Clock
	limit  int64
	window time.Duration
	every  rate.Limit

	mu        sync.Mutex
	buckets   map[Key]*bucket
	lastSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func TokenBucketFactory(clock clock.Clock) LimiterFactory {
	return func(l int64, w time.Duration) RateLimiter {
		return NewTokenBucketRateLimiter(clock, l, w)
	}
}

func NewTokenBucketRateLimiter(clock clock.Clock, limit int64, window time.Duration) *TokenBucketRateLimiter {
	limit = max(limit, 0)
	every := rate.Limit(0)
	if limit > 0 && window > 0 {
		every = rate.Every(window / time.Duration(limit))
	}
	return &TokenBucketRateLimiter{
		clock:   clock,
		limit:   limit,
		window:  window,
		every:   every,
		buckets: make(map[Key]*bucket),
	}
}

// Allow implements RateLimiter.
func (t *TokenBucketRateLimiter) Allow(_ context.Context, key Key) (Result, error) {
	now := t.clock.Now()
	lim := t.bucketFor(key, now)

	res := Result{
		Limit:  t.limit,
		Window: t.window,
	}

	r := lim.ReserveN(now, 1)
	if !r.OK() {
		res.RetryAfter = t.window
		res.WindowResetIn = t.window
		return res, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		res.RetryAfter = delay
		res.WindowResetIn = delay
		return res, nil
	}

	tokens := lim.TokensAt(now)
	res.Allowed = true
	res.Remaining = max(int64(tokens), 0)
	if t.every > 0 {
		missing := float64(t.limit) - tokens
		res.WindowResetIn = time.Duration(missing / float64(t.every) * float64(time.Second))
	}
	return res, nil
}

func (t *TokenBucketRateLimiter) bucketFor(key Key, now time.Time) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sweep(now)
	b, ok := t.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(t.every, int(t.limit))}
		t.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// sweep drops buckets idle for longer than a window; such buckets are full
// again, so forgetting them changes nothing. Callers hold t.mu.
func (t *TokenBucketRateLimiter) sweep(now time.Time) {
	if now.Sub(t.lastSweep) < t.window {
		return
	}
	t.lastSweep = now
	for k, b := range t.buckets {
		if now.Sub(b.lastSeen) > t.window {
			delete(t.buckets, k)
		}
	}
}

func (t *TokenBucketRateLimiter) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buckets)
}
