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
	"time"
)

const (
	MinContentLength = 10
	MaxContentLength = 5000

	// DailyLimit is enforced by the store over a rolling 24 hour window.
	DailyLimit = 5
)

type Status string

const (
	StatusUnread Status = "unread"
	StatusRead   Status = "read"
)

// LimitReachedMessage is shown to callers who exhausted the daily quota.
const LimitReachedMessage = "Feedback limit reached. Maximum 5 feedbacks per day allowed."

var (
	ErrUnauthenticated         = errors.New("authentication required")
	ErrInvalidData             = errors.New("invalid feedback")
	ErrFeedbackLimitReached    = errors.New("feedback limit reached")
	ErrCollaboratorUnavailable = errors.New("feedback collaborator unavailable")
)

type (
	Feedback struct {
		ID        int64
		OwnerID   string
		Content   string
		Status    Status
		CreatedAt time.Time
	}

	// FeedbackStore persists feedback. The store owns the daily quota and
	// reports a violation as ErrFeedbackLimitReached.
	FeedbackStore interface {
		InsertFeedback(ctx context.Context, ownerID, content string) (*Feedback, error)
	}

	Application struct {
		store FeedbackStore
	}
)

func NewApp(store FeedbackStore) *Application {
	return &Application{store: store}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidData, err)
}
