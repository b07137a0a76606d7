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
	"errors"

	"foundermatch/core/profile/domain"
	"foundermatch/modules/middleware/problem"
)

// ProblemFromDomainError maps profile domain errors to problem details.
// Collaborator failures get a generic detail; the cause is only logged.
func ProblemFromDomainError(err error) *problem.Problem {
	var ownership *domain.OwnershipError
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return problem.Unauthorized("authentication required")
	case errors.As(err, &ownership):
		return problem.Forbidden(ownership.Error())
	case errors.Is(err, domain.ErrForbidden):
		return problem.Forbidden("forbidden")
	case errors.Is(err, domain.ErrInvalidData):
		return problem.UnprocessableEntity("invalid input",
			problem.WithInvalidParams(domain.FieldErrors(err)))
	case errors.Is(err, domain.ErrCollaboratorUnavailable):
		return problem.ServiceUnavailable("a backing service is unavailable, please retry later")
	default:
		return problem.Internal("server error")
	}
}
