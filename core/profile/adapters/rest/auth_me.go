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

	"foundermatch/modules/api/serde"
	"foundermatch/modules/principal"
)

// Me echoes the principal resolved from the bearer token, or null.
func (a *ProfileAPI) Me(w http.ResponseWriter, r *http.Request) {
	p := principal.FromContext(r.Context())
	if p.IsAnonymous() {
		serde.WriteJSON(w, http.StatusOK, nil)
		return
	}
	serde.WriteJSON(w, http.StatusOK, principalJSON{ID: p.ID, Email: p.Email})
}
