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

package domain

import (
	"strings"

	"foundermatch/modules/clock"

	"github.com/gofrs/uuid/v5"
)

type Option func(*Application)

// WithClock overrides the time source used for photo keys and last-active stamps.
func WithClock(c clock.Clock) Option {
	return func(app *Application) {
		if c != nil {
			app.clock = c
		}
	}
}

// WithTokenSource overrides the random component of photo object keys.
func WithTokenSource(fn func() string) Option {
	return func(app *Application) {
		if fn != nil {
			app.newToken = fn
		}
	}
}

func NewApp(reader ProfileReadStore, writer ProfileWriteStore, photos PhotoStore, opts ...Option) *Application {
	app := &Application{
		reader:   reader,
		writer:   writer,
		photos:   photos,
		clock:    clock.RealClockProvider(),
		newToken: randomToken,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app
}

func randomToken() string {
	id := uuid.Must(uuid.NewV4())
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
