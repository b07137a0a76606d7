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
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"foundermatch/modules/clock"
	"foundermatch/modules/principal"
	rl "foundermatch/modules/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func newDefaultMiddleware(t *testing.T, clk clock.Clock) http.Handler {
	t.Helper()
	cfg := &RestHTTPConfig{}
	cfg.ApplyDefaults()
	rtp, err := ParsePolicy(rl.TokenBucketFactory(clk), cfg, PathRouteInfo, KeyStrategies())
	require.NoError(t, err)
	return NewRateLimitMiddleware(rtp)(okHandler())
}

func post(path, ip string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, nil)
	r.RemoteAddr = ip + ":51234"
	return r
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	cfg := &RestHTTPConfig{}
	cfg.ApplyDefaults()

	assert.Equal(t, int64(100), cfg.DefaultPolicy.Limit)
	assert.Equal(t, 15*time.Minute, cfg.DefaultPolicy.Window)
	assert.Equal(t, KeyStrategyRemoteIP, cfg.DefaultPolicy.KeyStrategy)
	require.Len(t, cfg.Routes, 1)
	assert.Equal(t, UploadPhotoPattern, cfg.Routes[0].Pattern)
	assert.Equal(t, int64(10), cfg.Routes[0].EndpointRules[0].Limit)
	assert.Equal(t, time.Hour, cfg.Routes[0].EndpointRules[0].Window)

	t.Run("configured routes keep their values and inherit the rest", func(t *testing.T) {
		t.Parallel()
		cfg := &RestHTTPConfig{Routes: []Route{{
			Pattern:       "/rpc/feedback.submit",
			EndpointRules: []EndpointRule{{Method: "POST", Limit: 3}},
		}}}
		cfg.ApplyDefaults()
		require.Len(t, cfg.Routes, 1)
		rule := cfg.Routes[0].EndpointRules[0]
		assert.Equal(t, int64(3), rule.Limit)
		assert.Equal(t, 15*time.Minute, rule.Window)
		assert.Equal(t, DefaultMessage, rule.Message)
	})
}

func TestUploadLimit(t *testing.T) {
	t.Parallel()

	clk := clock.NewManualClock(testStart)
	h := newDefaultMiddleware(t, clk)

	for i := range 10 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, post(UploadPhotoPattern, "203.0.113.7"))
		require.Equal(t, http.StatusNoContent, rec.Code, "request %d", i)
		assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, post(UploadPhotoPattern, "203.0.113.7"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "RATE_LIMITED", body["code"])
	assert.Equal(t, UploadMessage, body["detail"])

	// other routes and other callers have their own budget
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, post("/rpc/profile.get", "203.0.113.7"))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, post(UploadPhotoPattern, "198.51.100.1"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGeneralLimitIsSharedAcrossRoutes(t *testing.T) {
	t.Parallel()

	h := newDefaultMiddleware(t, clock.NewManualClock(testStart))
	paths := []string{"/rpc/profile.get", "/rpc/profile.list", "/rpc/feedback.submit"}
	for i := range 100 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, post(paths[i%len(paths)], "192.0.2.10"))
		require.Equal(t, http.StatusNoContent, rec.Code, "request %d", i)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, post("/rpc/auth.me", "192.0.2.10"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), DefaultMessage)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, rl.Key) (rl.Result, error) {
	return rl.Result{}, errors.New("redis down")
}

func TestLimiterError(t *testing.T) {
	t.Parallel()

	factory := func(int64, time.Duration) rl.RateLimiter { return failingLimiter{} }

	tests := []struct {
		name     string
		failOpen bool
		want     int
	}{
		{name: "fail closed", failOpen: false, want: http.StatusServiceUnavailable},
		{name: "fail open", failOpen: true, want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &RestHTTPConfig{AllowIfLimiterError: tt.failOpen}
			cfg.ApplyDefaults()
			rtp, err := ParsePolicy(factory, cfg, nil, KeyStrategies())
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			NewRateLimitMiddleware(rtp)(okHandler()).ServeHTTP(rec, post("/rpc/profile.get", "192.0.2.1"))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestParsePolicyErrors(t *testing.T) {
	t.Parallel()

	factory := rl.TokenBucketFactory(clock.NewManualClock(testStart))
	tests := []struct {
		name string
		cfg  RestHTTPConfig
	}{
		{
			name: "unknown key strategy",
			cfg: RestHTTPConfig{Routes: []Route{{
				Pattern:       "/rpc/profile.get",
				EndpointRules: []EndpointRule{{Method: "POST", Limit: 1, Window: time.Minute, KeyStrategy: "cookie"}},
			}}},
		},
		{
			name: "duplicate method",
			cfg: RestHTTPConfig{Routes: []Route{{
				Pattern: "/rpc/profile.get",
				EndpointRules: []EndpointRule{
					{Method: "post", Limit: 1, Window: time.Minute, KeyStrategy: KeyStrategyRemoteIP},
					{Method: "POST", Limit: 2, Window: time.Minute, KeyStrategy: KeyStrategyRemoteIP},
				},
			}}},
		},
		{
			name: "missing window",
			cfg: RestHTTPConfig{Routes: []Route{{
				Pattern:       "/rpc/profile.get",
				EndpointRules: []EndpointRule{{Method: "POST", Limit: 1, KeyStrategy: KeyStrategyRemoteIP}},
			}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParsePolicy(factory, &tt.cfg, PathRouteInfo, KeyStrategies())
			assert.Error(t, err)
		})
	}
}

func TestKeyFuncs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		remote string
		xff    string
		p      *principal.Principal
		keyFn  KeyFunc
		want   rl.Key
	}{
		{name: "peer address", remote: "192.0.2.1:4000", keyFn: RemoteIpKeyFunc, want: "ip:192.0.2.1"},
		{name: "last forwarded hop", remote: "10.0.0.1:4000", xff: "198.51.100.2, 203.0.113.9", keyFn: RemoteIpKeyFunc, want: "ip:203.0.113.9"},
		{name: "blank forwarded header", remote: "10.0.0.1:4000", xff: " ", keyFn: RemoteIpKeyFunc, want: "ip:10.0.0.1"},
		{name: "address without port", remote: "10.0.0.2", keyFn: RemoteIpKeyFunc, want: "ip:10.0.0.2"},
		{name: "principal", remote: "10.0.0.1:4000", p: &principal.Principal{ID: "u1"}, keyFn: PrincipalKeyFunc, want: "user:u1"},
		{name: "anonymous principal falls back to ip", remote: "10.0.0.1:4000", keyFn: PrincipalKeyFunc, want: "ip:10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodPost, "/rpc/profile.get", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			r = r.WithContext(principal.WithPrincipal(r.Context(), tt.p))
			assert.Equal(t, tt.want, tt.keyFn(r))
		})
	}
}
