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

package identity

import (
	"context"
	"errors"

	"foundermatch/modules/principal"

	"github.com/coreos/go-oidc/v3/oidc"
)

type JWKSVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewJWKSVerifier fetches signing keys lazily from cfg.KeySetURL() and caches
// them until an unknown key id shows up.
func NewJWKSVerifier(ctx context.Context, cfg Config) *JWKSVerifier {
	keys := oidc.NewRemoteKeySet(ctx, cfg.KeySetURL())
	return &JWKSVerifier{
		verifier: oidc.NewVerifier(cfg.Issuer, keys, &oidc.Config{
			ClientID:             cfg.Audience,
			SupportedSigningAlgs: []string{oidc.RS256, oidc.ES256},
		}),
	}
}

func (v *JWKSVerifier) Verify(ctx context.Context, rawToken string) (*principal.Principal, error) {
	tok, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, invalidToken(err)
	}
	if tok.Subject == "" {
		return nil, invalidToken(errors.New("missing subject"))
	}

	var extra struct {
		Email string `json:"email"`
	}
	if err := tok.Claims(&extra); err != nil {
		return nil, invalidToken(err)
	}

	return &principal.Principal{
		ID:          tok.Subject,
		Email:       extra.Email,
		AccessToken: rawToken,
	}, nil
}
