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
	"time"

	"foundermatch/modules/principal"

	"github.com/golang-jwt/jwt/v5"
)

// claims is the subset of a Supabase access token the service reads.
type claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type HS256Verifier struct {
	secret []byte
	parser *jwt.Parser
}

type HS256Option func(*[]jwt.ParserOption)

// WithTimeFunc pins the verification time, mostly for tests.
func WithTimeFunc(now func() time.Time) HS256Option {
	return func(opts *[]jwt.ParserOption) {
		*opts = append(*opts, jwt.WithTimeFunc(now))
	}
}

func NewHS256Verifier(cfg Config, opts ...HS256Option) *HS256Verifier {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(cfg.Issuer))
	}
	for _, opt := range opts {
		opt(&parserOpts)
	}

	return &HS256Verifier{
		secret: []byte(cfg.JWTSecret),
		parser: jwt.NewParser(parserOpts...),
	}
}

func (v *HS256Verifier) Verify(_ context.Context, rawToken string) (*principal.Principal, error) {
	var c claims
	_, err := v.parser.ParseWithClaims(rawToken, &c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, invalidToken(err)
	}
	if c.Subject == "" {
		return nil, invalidToken(errors.New("missing subject"))
	}

	return &principal.Principal{
		ID:          c.Subject,
		Email:       c.Email,
		AccessToken: rawToken,
	}, nil
}
