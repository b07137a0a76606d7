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
	"time"

	"foundermatch/modules/clock"

	"github.com/gofrs/uuid/v5"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100

	// MaxPhotoPayloadLength bounds the encoded photo payload (~7MB of binary).
	MaxPhotoPayloadLength = 10_000_000

	maxNameLength     = 200
	maxFreeTextLength = 5000
	maxURLLength      = 2048
)

type (
	Application struct {
		reader ProfileReadStore
		writer ProfileWriteStore
		photos PhotoStore

		clock    clock.Clock
		newToken func() string
	}

	// Profile is the founder profile owned by exactly one principal.
	Profile struct {
		ID             uuid.UUID
		OwnerID        string
		Name           string
		Age            *int
		Occupation     Occupation
		TimeCommitment TimeCommitment
		IsTechnical    bool
		HasIdea        bool
		SkillAreas     []SkillArea
		Idea           *string
		LookingFor     *string
		Skills         *string
		LinkedIn       *string
		PhotoURL       *string

		ProfileCompleted bool

		CreatedAt    time.Time
		UpdatedAt    time.Time
		LastActiveAt time.Time
	}

	// UpsertProfileInput is the full payload of a create-or-update.
	// Nil free text fields keep whatever is stored; Age is always written.
	UpsertProfileInput struct {
		OwnerID          string         `json:"ownerId"`
		Email            *string        `json:"email"`
		Name             string         `json:"name"`
		Age              *int           `json:"age"`
		Occupation       Occupation     `json:"current_occupation"`
		TimeCommitment   TimeCommitment `json:"time_commitment"`
		IsTechnical      bool           `json:"is_technical"`
		HasIdea          bool           `json:"has_idea"`
		SkillAreas       []SkillArea    `json:"skill_areas"`
		Idea             *string        `json:"idea"`
		LookingFor       *string        `json:"looking_for"`
		Skills           *string        `json:"skills"`
		LinkedIn         *string        `json:"linked_in"`
		PhotoURL         *string        `json:"photo_url"`
		ProfileCompleted *bool          `json:"profile_completed"`
	}

	// UpsertProfileParams is what the write store persists.
	UpsertProfileParams struct {
		OwnerID          string
		Name             string
		Age              *int
		Occupation       Occupation
		TimeCommitment   TimeCommitment
		IsTechnical      bool
		HasIdea          bool
		SkillAreas       []SkillArea
		Idea             *string
		LookingFor       *string
		Skills           *string
		LinkedIn         *string
		PhotoURL         *string
		ProfileCompleted bool
	}

	UploadPhotoInput struct {
		OwnerID string `json:"ownerId"`
		// PhotoData is base64, optionally wrapped in a data URL.
		PhotoData string `json:"photoData"`
		MimeType  string `json:"mimeType"`
	}

	ListProfilesParams struct {
		ExcludeOwnerID string `json:"excludeOwnerId"`
		Limit          *int   `json:"limit"`
		Offset         *int   `json:"offset"`
	}

	// ProfilePage is one offset page of profiles, newest first.
	ProfilePage struct {
		Data    []Profile
		Total   int
		Limit   int
		Offset  int
		HasMore bool
	}
)
