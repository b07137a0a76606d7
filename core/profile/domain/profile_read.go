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
)

// ReadAndTouchProfile returns the owner's profile, or nil when there is none.
// A successful read also refreshes last_active_at; failing to do so is logged
// and does not fail the read.
func (app *Application) ReadAndTouchProfile(ctx context.Context, ownerID string) (*Profile, error) {
	if ownerID == "" {
		return nil, nil
	}
	prof, err := app.reader.GetProfileByOwner(ctx, ownerID)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to read profile", slog.Any("error", err))
		return nil, unavailable(err)
	}

	now := app.clock.Now()
	if err := app.writer.TouchLastActive(ctx, ownerID, now); err != nil {
		slog.WarnContext(ctx, "failed to refresh last_active_at",
			slog.String("owner_id", ownerID), slog.Any("error", err))
		return prof, nil
	}
	prof.LastActiveAt = now
	return prof, nil
}
