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
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated         = errors.New("authentication required")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidData             = errors.New("invalid data provided for profile operations")
	ErrProfileNotFound         = errors.New("profile not found")
	ErrCollaboratorUnavailable = errors.New("profile collaborator unavailable")
)

// OwnershipError is returned when a principal targets a profile it does not own.
type OwnershipError struct {
	Action string
}

func (e *OwnershipError) Error() string {
	return "you can only " + e.Action
}

func (e *OwnershipError) Is(target error) bool {
	return target == ErrForbidden
}

// invalid keeps the field level details (validation.Errors) reachable through errors.As.
func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidData, err)
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrCollaboratorUnavailable, err)
}
