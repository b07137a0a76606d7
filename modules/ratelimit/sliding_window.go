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
	"fmt"
	"math/bits"
	"time"

	"foundermatch/modules/clock"
)

var _ RateLimiter = (*SlidingWindowRateLimiter)(nil)

// SlidingWindowRateLimiter approximates a sliding window with two adjacent
// fixed windows (current + previous), weighting the previous window by how
// much of it still overlaps the sliding window.
//
// Counters live in a CounterStore so every replica of the service shares them.
type SlidingWindowRateLimiter struct {
	clock     clock.Clock
	counter   CounterStore
	keyPrefix string

	limit  uint64
	window time.Duration
}

func SlidingWindowFactory(clock clock.Clock, counter CounterStore, keyPrefix string) LimiterFactory {
	if keyPrefix == "" {
		keyPrefix = "rl"
	}
	return func(l int64, w time.Duration) RateLimiter {
		return &SlidingWindowRateLimiter{
			clock:     clock,
			counter:   counter,
			keyPrefix: keyPrefix,
			limit:     uint64(max(l, 0)),
			window:    w,
		}
	}
}

// Allow implements RateLimiter. Denied requests still count against the window.
func (s *SlidingWindowRateLimiter) Allow(ctx context.Context, key Key) (Result, error) {
	nowNs := s.clock.Now().UnixNano()
	windowNs := s.window.Nanoseconds()
	if windowNs <= 0 {
		return Result{}, fmt.Errorf("ratelimit: non-positive window %s", s.window)
	}

	idx := nowNs / windowNs
	current, err := s.counter.Incr(ctx, s.buildKey(key, idx), s.window*2)
	if err != nil {
		return Result{}, err
	}
	previous, err := s.counter.Get(ctx, s.buildKey(key, idx-1))
	if err != nil {
		return Result{}, err
	}

	elapsedNs := min(max(nowNs-idx*windowNs, 0), windowNs)
	resetIn := max(s.window-time.Duration(elapsedNs), 0)

	u := weightedUsage(uint64(max(current, 0)), uint64(max(previous, 0)), uint64(windowNs), uint64(windowNs-elapsedNs))
	allowed := u.within(s.limit, uint64(windowNs))

	remaining := uint64(0)
	if used := u.ceilDiv(uint64(windowNs)); used < s.limit {
		remaining = s.limit - used
	}

	result := Result{
		Allowed:       allowed,
		Remaining:     int64(remaining),
		Limit:         int64(s.limit),
		Window:        s.window,
		WindowResetIn: resetIn,
	}
	if !allowed {
		result.RetryAfter = resetIn
	}
	return result, nil
}

func (s *SlidingWindowRateLimiter) buildKey(key Key, windowIdx int64) string {
	return fmt.Sprintf("%s:%s:%d", s.keyPrefix, key, windowIdx)
}

// usage is a 128-bit request*nanosecond product. Staying in integers keeps two
// consecutive requests from reporting the same remaining count.
type usage struct{ hi, lo uint64 }

// weightedUsage = current*window + previous*previousWeight.
func weightedUsage(current, previous, window, previousWeight uint64) usage {
	curHi, curLo := bits.Mul64(current, window)
	prevHi, prevLo := bits.Mul64(previous, previousWeight)
	lo, carry := bits.Add64(curLo, prevLo, 0)
	hi, _ := bits.Add64(curHi, prevHi, carry)
	return usage{hi: hi, lo: lo}
}

// within reports usage <= limit*window.
func (u usage) within(limit, window uint64) bool {
	limHi, limLo := bits.Mul64(limit, window)
	return u.hi < limHi || (u.hi == limHi && u.lo <= limLo)
}

// ceilDiv returns ceil(usage/window), saturating at MaxUint64.
func (u usage) ceilDiv(window uint64) uint64 {
	switch {
	case u.hi == 0:
		return u.lo/window + boolToUint(u.lo%window != 0)
	case u.hi < window:
		q, r := bits.Div64(u.hi, u.lo, window)
		if r != 0 && q != ^uint64(0) {
			q++
		}
		return q
	default:
		return ^uint64(0)
	}
}

func boolToUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
