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

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"foundermatch/modules/identity"
	"foundermatch/modules/middleware/problem"
	"foundermatch/modules/principal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]*principal.Principal

func (s stubVerifier) Verify(_ context.Context, raw string) (*principal.Principal, error) {
	if raw == "broken" {
		return nil, errors.New("jwks endpoint unreachable")
	}
	if p, ok := s[raw]; ok {
		return p, nil
	}
	return nil, identity.ErrInvalidToken
}

func principalEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := principal.FromContext(r.Context())
		if p == nil {
			_, _ = w.Write([]byte("anonymous"))
			return
		}
		_, _ = w.Write([]byte(p.ID))
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	verifier := stubVerifier{"good": {ID: "u1"}}
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "valid bearer", header: "Bearer good", want: "u1"},
		{name: "case insensitive scheme", header: "bearer good", want: "u1"},
		{name: "no header", want: "anonymous"},
		{name: "wrong scheme", header: "Basic good", want: "anonymous"},
		{name: "empty token", header: "Bearer   ", want: "anonymous"},
		{name: "invalid token", header: "Bearer forged", want: "anonymous"},
		{name: "verifier failure", header: "Bearer broken", want: "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodPost, "/rpc/auth.me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			Authenticate(verifier)(principalEcho()).ServeHTTP(rec, r)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		problem.Write(w, problem.BadRequest("nope"))
	}))

	t.Run("keeps a caller supplied id", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "abc-123", body["traceId"])
	})

	t.Run("replaces unusable ids", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set("X-Request-ID", "has space")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.NotEqual(t, "has space", seen)
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	})
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	h := Recovery(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rpc/profile.get", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestCORS(t *testing.T) {
	t.Parallel()

	h := CORS(CORSConfig{AllowedOrigins: []string{"https://app.example.com"}, AllowCredentials: true, MaxAge: 300})(principalEcho())

	r := httptest.NewRequest(http.MethodOptions, "/rpc/profile.get", nil)
	r.Header.Set("Origin", "https://app.example.com")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	r.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	r = httptest.NewRequest(http.MethodOptions, "/rpc/profile.get", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

const miniSpec = `openapi: 3.0.3
info:
  title: test
  version: "1"
paths:
  /rpc/feedback.submit:
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [content]
              properties:
                content:
                  type: string
                  maxLength: 20
      responses:
        "200":
          description: ok
`

func TestOpenAPIValidation(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"spec.yaml": &fstest.MapFile{Data: []byte(miniSpec)}}
	h := OpenAPIValidation(fsys, "spec.yaml", WriteValidationProblem, WriteSpecLoadProblem)(principalEcho())

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		wantType string
	}{
		{name: "valid", path: "/rpc/feedback.submit", body: `{"content":"works fine"}`, wantCode: http.StatusOK},
		{name: "schema violation", path: "/rpc/feedback.submit", body: `{"content":"this content is far too long"}`, wantCode: http.StatusUnprocessableEntity, wantType: problem.CodeValidationFailed},
		{name: "malformed json", path: "/rpc/feedback.submit", body: `{"content":`, wantCode: http.StatusBadRequest, wantType: problem.CodeBadRequest},
		{name: "unknown procedure", path: "/rpc/nope", body: `{}`, wantCode: http.StatusNotFound, wantType: problem.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			r.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantType == "" {
				return
			}
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["code"])
		})
	}

	t.Run("broken document", func(t *testing.T) {
		t.Parallel()
		h := OpenAPIValidation(fstest.MapFS{}, "missing.yaml", WriteValidationProblem, WriteSpecLoadProblem)(principalEcho())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rpc/feedback.submit", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
