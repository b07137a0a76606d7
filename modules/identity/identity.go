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

// Package identity turns bearer tokens issued by the external identity
// provider into request principals.
package identity

import (
	"context"
	"errors"
	"fmt"

	"foundermatch/modules/principal"
)

var ErrInvalidToken = errors.New("identity: invalid token")

// Verifier validates a raw bearer token. Implementations return an error
// wrapping ErrInvalidToken for any token that must be treated as anonymous.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*principal.Principal, error)
}

// New builds the verifier selected by cfg.Mode. ctx bounds the lifetime of
// the JWKS key fetcher and should live as long as the server.
func New(ctx context.Context, cfg Config) (Verifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("identity: config: %w", err)
	}

	switch cfg.Mode {
	case ModeJWKS:
		return NewJWKSVerifier(ctx, cfg), nil
	default:
		return NewHS256Verifier(cfg), nil
	}
}

func invalidToken(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidToken, err)
}
