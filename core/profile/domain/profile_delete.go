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

	"foundermatch/modules/principal"
)

// DeleteProfile removes the owner's photo (best-effort) and then the profile record.
// Deleting a profile that does not exist succeeds.
func (app *Application) DeleteProfile(ctx context.Context, p *principal.Principal, ownerID string) error {
	if err := authorizeOwner(p, ownerID, actionDeleteProfile); err != nil {
		return err
	}

	current, err := app.reader.GetProfileByOwner(ctx, ownerID)
	switch {
	case err == nil:
		if photo := photoOf(current); photo != "" {
			app.removeOwnedPhoto(ctx, ownerID, photo)
		}
	case errors.Is(err, ErrProfileNotFound):
	default:
		slog.WarnContext(ctx, "failed to look up profile photo before delete", slog.Any("error", err))
	}

	if err := app.writer.DeleteProfile(ctx, ownerID); err != nil {
		slog.ErrorContext(ctx, "failed to delete profile", slog.Any("error", err))
		return unavailable(err)
	}
	return nil
}
