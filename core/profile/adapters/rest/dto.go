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

package rest

import (
	"time"

	"foundermatch/core/profile/domain"
)

// profileJSON is the wire shape of a profile; field names follow the
// snake_case columns the browser client already consumes.
type profileJSON struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Name             string    `json:"name"`
	Age              *int      `json:"age"`
	Occupation       string    `json:"current_occupation"`
	TimeCommitment   string    `json:"time_commitment"`
	IsTechnical      bool      `json:"is_technical"`
	HasIdea          bool      `json:"has_idea"`
	SkillAreas       []string  `json:"skill_areas"`
	Idea             *string   `json:"idea"`
	LookingFor       *string   `json:"looking_for"`
	Skills           *string   `json:"skills"`
	LinkedIn         *string   `json:"linked_in"`
	PhotoURL         *string   `json:"photo_url"`
	ProfileCompleted bool      `json:"profile_completed"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	LastActiveAt     time.Time `json:"last_active_at"`
}

type profilePageJSON struct {
	Data    []profileJSON `json:"data"`
	Total   int           `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	HasMore bool          `json:"hasMore"`
}

type (
	ownerRequest struct {
		OwnerID string `json:"ownerId"`
	}

	successResponse struct {
		Success bool `json:"success"`
	}

	photoResponse struct {
		URL string `json:"url"`
	}

	principalJSON struct {
		ID    string `json:"id"`
		Email string `json:"email,omitempty"`
	}
)

func mapProfile(p *domain.Profile) *profileJSON {
	if p == nil {
		return nil
	}
	skills := make([]string, 0, len(p.SkillAreas))
	for _, s := range p.SkillAreas {
		skills = append(skills, string(s))
	}
	return &profileJSON{
		ID:               p.ID.String(),
		UserID:           p.OwnerID,
		Name:             p.Name,
		Age:              p.Age,
		Occupation:       string(p.Occupation),
		TimeCommitment:   string(p.TimeCommitment),
		IsTechnical:      p.IsTechnical,
		HasIdea:          p.HasIdea,
		SkillAreas:       skills,
		Idea:             p.Idea,
		LookingFor:       p.LookingFor,
		Skills:           p.Skills,
		LinkedIn:         p.LinkedIn,
		PhotoURL:         p.PhotoURL,
		ProfileCompleted: p.ProfileCompleted,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		LastActiveAt:     p.LastActiveAt,
	}
}

func mapPage(page *domain.ProfilePage) profilePageJSON {
	data := make([]profileJSON, 0, len(page.Data))
	for i := range page.Data {
		data = append(data, *mapProfile(&page.Data[i]))
	}
	return profilePageJSON{
		Data:    data,
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasMore,
	}
}
