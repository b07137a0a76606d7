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
	"time"
)

type KeyStrategyId string

const (
	KeyStrategyRemoteIP  KeyStrategyId = "remote_ip"
	KeyStrategyPrincipal KeyStrategyId = "principal"
)

const (
	UploadPhotoPattern = "/rpc/profile.uploadPhoto"

	DefaultMessage = "Too many requests from this IP, please try again later."
	UploadMessage  = "Too many upload requests, please try again later."
)

type (
	RestHTTPConfig struct {
		Routes              []Route      `envPrefix:"ROUTE_"`
		DefaultPolicy       EndpointRule `envPrefix:"DEFAULT_"`
		AllowIfNoMatch      bool         `env:"ALLOW_IF_NO_MATCH"`
		AllowIfNoIdentifier bool         `env:"ALLOW_IF_NO_ID"`
		// AllowIfLimiterError lets requests through while the counter store is unreachable.
		AllowIfLimiterError bool `env:"ALLOW_IF_LIMITER_ERROR"`
	}

	// Route patterns are matched against the request path verbatim.
	Route struct {
		Pattern       string         `env:"PATTERN"`
		EndpointRules []EndpointRule `envPrefix:"POLICY_"`
	}

	EndpointRule struct {
		Method      string        `env:"METHOD"`
		Limit       int64         `env:"LIMIT"`
		Window      time.Duration `env:"WINDOW"`
		KeyStrategy KeyStrategyId `env:"KEY_STRATEGY"`
		// Message is the problem detail returned when the rule denies a request.
		Message string `env:"MESSAGE"`
	}
)

// ApplyDefaults fills what the environment left unset: 100 requests per 15
// minutes per remote IP for every route, and 10 uploads per hour per remote IP.
func (c *RestHTTPConfig) ApplyDefaults() {
	d := &c.DefaultPolicy
	if d.Window <= 0 {
		d.Window = 15 * time.Minute
	}
	if d.Limit <= 0 {
		d.Limit = 100
	}
	if d.KeyStrategy == "" {
		d.KeyStrategy = KeyStrategyRemoteIP
	}
	if d.Message == "" {
		d.Message = DefaultMessage
	}

	if len(c.Routes) == 0 {
		c.Routes = []Route{{
			Pattern: UploadPhotoPattern,
			EndpointRules: []EndpointRule{{
				Method:      "POST",
				Limit:       10,
				Window:      time.Hour,
				KeyStrategy: KeyStrategyRemoteIP,
				Message:     UploadMessage,
			}},
		}}
	}

	for i := range c.Routes {
		for j := range c.Routes[i].EndpointRules {
			rule := &c.Routes[i].EndpointRules[j]
			if rule.Limit <= 0 {
				rule.Limit = d.Limit
			}
			if rule.Window <= 0 {
				rule.Window = d.Window
			}
			if rule.KeyStrategy == "" {
				rule.KeyStrategy = d.KeyStrategy
			}
			if rule.Message == "" {
				rule.Message = d.Message
			}
		}
	}
}
