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
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"foundermatch/modules/identity"
	"foundermatch/modules/principal"
)

// Authenticate resolves the bearer token into a principal and stores it in the
// request context. It never rejects: a missing or unverifiable token leaves the
// request anonymous and the use cases decide what anonymous callers may do.
func Authenticate(verifier identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok || verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			p, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				level := slog.LevelDebug
				if !errors.Is(err, identity.ErrInvalidToken) {
					level = slog.LevelWarn
				}
				slog.Log(r.Context(), level, "bearer token rejected",
					slog.String("middleware", "authenticate"),
					slog.Any("error", err),
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(principal.WithPrincipal(r.Context(), p)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
