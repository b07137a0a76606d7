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
	"log/slog"
)

// ListProfiles returns one page of profiles, newest first.
//
// The excluded owner is filtered out of the fetched page after the fact, so a
// page may hold one entry fewer than limit. HasMore is computed from the
// unfiltered total.
func (app *Application) ListProfiles(ctx context.Context, params ListProfilesParams) (*ProfilePage, error) {
	if err := params.Validate(); err != nil {
		return nil, invalid(err)
	}
	limit, offset := DefaultPageLimit, 0
	if params.Limit != nil {
		limit = *params.Limit
	}
	if params.Offset != nil {
		offset = *params.Offset
	}

	rows, total, err := app.reader.ListProfilesByOffset(ctx, limit, offset)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list profiles", slog.Any("error", err))
		return nil, unavailable(err)
	}

	page := &ProfilePage{
		Data:    make([]Profile, 0, len(rows)),
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < total,
	}
	for _, row := range rows {
		if params.ExcludeOwnerID != "" && row.OwnerID == params.ExcludeOwnerID {
			page.Total = max(page.Total-1, 0)
			continue
		}
		page.Data = append(page.Data, row)
	}
	return page, nil
}
