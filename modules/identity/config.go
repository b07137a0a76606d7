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
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type Mode string

const (
	// ModeHS256 verifies tokens signed with the provider's shared JWT secret.
	ModeHS256 Mode = "hs256"
	// ModeJWKS verifies asymmetric tokens against the provider's published key set.
	ModeJWKS Mode = "jwks"
)

type Config struct {
	Mode      Mode          `env:"MODE" envDefault:"hs256"`
	JWTSecret string        `env:"JWT_SECRET"`
	Issuer    string        `env:"ISSUER"`
	Audience  string        `env:"AUDIENCE" envDefault:"authenticated"`
	JWKSURL   string        `env:"JWKS_URL"`
	Leeway    time.Duration `env:"LEEWAY" envDefault:"30s"`
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Mode, validation.Required, validation.In(ModeHS256, ModeJWKS)),
		validation.Field(&c.JWTSecret, validation.When(c.Mode == ModeHS256, validation.Required)),
		validation.Field(&c.Issuer,
			validation.When(c.Mode == ModeJWKS, validation.Required),
			is.URL,
		),
		validation.Field(&c.JWKSURL, is.URL),
		validation.Field(&c.Audience, validation.Required),
		validation.Field(&c.Leeway, validation.Min(time.Duration(0))),
	)
}

// KeySetURL is JWKS_URL when set, otherwise the issuer's well-known key set.
func (c Config) KeySetURL() string {
	if c.JWKSURL != "" {
		return c.JWKSURL
	}
	return strings.TrimSuffix(c.Issuer, "/") + "/.well-known/jwks.json"
}
