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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"foundermatch/modules/principal"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type submission struct {
	Content string `json:"content"`
}

func (s submission) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Content,
			validation.Required,
			validation.RuneLength(MinContentLength, MaxContentLength),
		),
	)
}

// SubmitFeedback records feedback from the calling principal.
func (app *Application) SubmitFeedback(ctx context.Context, p *principal.Principal, content string) (*Feedback, error) {
	if p.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	s := submission{Content: strings.TrimSpace(content)}
	if err := s.Validate(); err != nil {
		return nil, invalid(err)
	}

	fb, err := app.store.InsertFeedback(ctx, p.ID, s.Content)
	switch {
	case err == nil:
		return fb, nil
	case errors.Is(err, ErrFeedbackLimitReached):
		slog.InfoContext(ctx, "feedback quota exhausted", slog.String("owner_id", p.ID))
		return nil, ErrFeedbackLimitReached
	default:
		slog.ErrorContext(ctx, "failed to insert feedback", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrCollaboratorUnavailable, err)
	}
}
