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

// Package principal carries the authenticated caller of a request.
//
// A Principal is resolved once per inbound request from its bearer credential and
// discarded when the request ends. A nil *Principal means the caller is anonymous.
package principal

import "context"

type Principal struct {
	// ID is the identity provider's stable subject identifier.
	ID string
	// Email is optional and only informational.
	Email string
	// AccessToken is the raw bearer credential the principal was resolved from.
	AccessToken string
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p. A nil p leaves ctx unchanged.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored in ctx, or nil for anonymous callers.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

// IsAnonymous reports whether no principal was resolved.
func (p *Principal) IsAnonymous() bool {
	return p == nil || p.ID == ""
}
