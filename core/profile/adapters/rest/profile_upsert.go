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
	"net/http"

	"foundermatch/core/profile/domain"
	"foundermatch/modules/api/serde"
	"foundermatch/modules/middleware/problem"
	"foundermatch/modules/principal"
)

// UpsertProfile creates or replaces the caller's own profile.
func (a *ProfileAPI) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "profile.upsert")
	defer span.End()

	var req domain.UpsertProfileInput
	if err := serde.ParseJsonBody(r.Body, &req); err != nil {
		problem.Write(w, serde.DecodeProblem(err))
		return
	}

	if err := a.app.UpsertProfile(ctx, principal.FromContext(ctx), req); err != nil {
		writeError(ctx, w, "profile.upsert", err)
		return
	}
	serde.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}
