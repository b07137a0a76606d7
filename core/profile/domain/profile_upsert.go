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
	"log/slog"
	"strings"

	"foundermatch/modules/principal"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// UpsertProfile creates or replaces the caller's profile.
//
// Omitted optional text fields keep their stored value, Age is always written.
// When the save swaps the stored photo URL for another one, the previous object
// is removed best-effort.
func (app *Application) UpsertProfile(ctx context.Context, p *principal.Principal, in UpsertProfileInput) error {
	if err := authorizeOwner(p, in.OwnerID, actionModifyProfile); err != nil {
		return err
	}

	in = in.normalized()
	if err := in.Validate(); err != nil {
		return invalid(err)
	}
	if in.PhotoURL != nil && *in.PhotoURL != "" {
		if key, stored := app.photos.PhotoKey(*in.PhotoURL); stored && !PhotoKeyOwnedBy(key, in.OwnerID) {
			return invalid(validation.Errors{"photo_url": errPhotoNamespace})
		}
	}

	current, err := app.reader.GetProfileByOwner(ctx, in.OwnerID)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		slog.ErrorContext(ctx, "failed to read profile before upsert", slog.Any("error", err))
		return unavailable(err)
	}

	stored, err := app.writer.UpsertProfile(ctx, in.params())
	if err != nil {
		slog.ErrorContext(ctx, "failed to upsert profile", slog.Any("error", err))
		return unavailable(err)
	}

	if previous := photoOf(current); previous != "" && previous != photoOf(stored) {
		app.removeOwnedPhoto(ctx, in.OwnerID, previous)
	}
	return nil
}

func (in UpsertProfileInput) normalized() UpsertProfileInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = trimmed(in.Email)
	in.LinkedIn = trimmed(in.LinkedIn)
	in.PhotoURL = trimmed(in.PhotoURL)
	in.SkillAreas = dedupeSkillAreas(in.SkillAreas)
	return in
}

func (in UpsertProfileInput) params() *UpsertProfileParams {
	completed := true
	if in.ProfileCompleted != nil {
		completed = *in.ProfileCompleted
	}
	return &UpsertProfileParams{
		OwnerID:          in.OwnerID,
		Name:             in.Name,
		Age:              in.Age,
		Occupation:       in.Occupation,
		TimeCommitment:   in.TimeCommitment,
		IsTechnical:      in.IsTechnical,
		HasIdea:          in.HasIdea,
		SkillAreas:       in.SkillAreas,
		Idea:             in.Idea,
		LookingFor:       in.LookingFor,
		Skills:           in.Skills,
		LinkedIn:         in.LinkedIn,
		PhotoURL:         in.PhotoURL,
		ProfileCompleted: completed,
	}
}

func photoOf(p *Profile) string {
	if p == nil || p.PhotoURL == nil {
		return ""
	}
	return *p.PhotoURL
}
