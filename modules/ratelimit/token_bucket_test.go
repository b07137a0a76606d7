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
	"testing"
	"time"

	"foundermatch/modules/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket(t *testing.T) {
	t.Parallel()

	t.Run("burst then refill", func(t *testing.T) {
		t.Parallel()
		clk := clock.NewManualClock(windowStart)
		lim := TokenBucketFactory(clk)(2, time.Minute)

		for i := range 2 {
			res, err := lim.Allow(context.Background(), "k")
			require.NoError(t, err)
			assert.True(t, res.Allowed)
			assert.Equal(t, int64(1-i), res.Remaining)
		}

		res, err := lim.Allow(context.Background(), "k")
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.InDelta(t, float64(30*time.Second), float64(res.RetryAfter), float64(time.Millisecond))

		clk.Advance(31 * time.Second)
		res, err = lim.Allow(context.Background(), "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("denied attempts do not consume tokens", func(t *testing.T) {
		t.Parallel()
		clk := clock.NewManualClock(windowStart)
		lim := NewTokenBucketRateLimiter(clk, 1, time.Minute)
		_, _ = lim.Allow(context.Background(), "k")
		for range 5 {
			res, _ := lim.Allow(context.Background(), "k")
			assert.False(t, res.Allowed)
		}
		clk.Advance(61 * time.Second)
		res, _ := lim.Allow(context.Background(), "k")
		assert.True(t, res.Allowed)
	})

	t.Run("zero limit denies everything", func(t *testing.T) {
		t.Parallel()
		lim := NewTokenBucketRateLimiter(clock.NewManualClock(windowStart), 0, time.Minute)
		res, err := lim.Allow(context.Background(), "k")
		require.NoError(t, err)
		assert.False(t, res.Allowed)
	})

	t.Run("idle buckets are swept", func(t *testing.T) {
		t.Parallel()
		clk := clock.NewManualClock(windowStart)
		lim := NewTokenBucketRateLimiter(clk, 5, time.Minute)
		_, _ = lim.Allow(context.Background(), "a")
		_, _ = lim.Allow(context.Background(), "b")
		assert.Equal(t, 2, lim.size())

		clk.Advance(2 * time.Minute)
		_, _ = lim.Allow(context.Background(), "c")
		assert.Equal(t, 1, lim.size())
	})
}
