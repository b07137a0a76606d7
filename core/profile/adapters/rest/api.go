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

// Package rest exposes the profile use cases as JSON RPC procedures.
package rest

import (
	"net/http"

	"foundermatch/core/profile/domain"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("foundermatch/core/profile/adapters/rest")

// ProfileAPI translates RPC requests into profile use case calls.
type ProfileAPI struct {
	app *domain.Application
}

func NewProfileAPI(app *domain.Application) *ProfileAPI {
	return &ProfileAPI{app: app}
}

// Register mounts the profile and auth procedures on mux.
func (a *ProfileAPI) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /rpc/profile.get", a.GetProfile)
	mux.HandleFunc("POST /rpc/profile.list", a.ListProfiles)
	mux.HandleFunc("POST /rpc/profile.upsert", a.UpsertProfile)
	mux.HandleFunc("POST /rpc/profile.uploadPhoto", a.UploadPhoto)
	mux.HandleFunc("POST /rpc/profile.delete", a.DeleteProfile)
	mux.HandleFunc("POST /rpc/auth.me", a.Me)
}
