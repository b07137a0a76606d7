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

import "foundermatch/modules/principal"

const (
	actionModifyProfile = "modify your own profile"
	actionUploadPhoto   = "upload your own photo"
	actionDeleteProfile = "delete your own profile"
)

// authorizeOwner is evaluated before any input validation or store access.
func authorizeOwner(p *principal.Principal, ownerID, action string) error {
	if p.IsAnonymous() {
		return ErrUnauthenticated
	}
	if p.ID != ownerID {
		return &OwnershipError{Action: action}
	}
	return nil
}
