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
	"log/slog"
	"net/http"

	"foundermatch/core/feedback/domain"
	"foundermatch/modules/api/serde"
	"foundermatch/modules/middleware/problem"
	"foundermatch/modules/principal"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("foundermatch/core/feedback/adapters/rest")

	submissions, _ = otel.Meter("foundermatch/core/feedback/adapters/rest").Int64Counter(
		"feedback_submissions_total",
		metric.WithDescription("Feedback entries accepted"),
		metric.WithUnit("{feedback}"),
	)
)

type FeedbackAPI struct {
	app *domain.Application
}

func NewFeedbackAPI(app *domain.Application) *FeedbackAPI {
	return &FeedbackAPI{app: app}
}

func (a *FeedbackAPI) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /rpc/feedback.submit", a.SubmitFeedback)
}

type (
	submitRequest struct {
		Content string `json:"content"`
	}

	submitResponse struct {
		Success bool  `json:"success"`
		ID      int64 `json:"id"`
	}
)

func (a *FeedbackAPI) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "feedback.submit")
	defer span.End()

	var req submitRequest
	if err := serde.ParseJsonBody(r.Body, &req); err != nil {
		problem.Write(w, serde.DecodeProblem(err))
		return
	}

	fb, err := a.app.SubmitFeedback(ctx, principal.FromContext(ctx), req.Content)
	if err != nil {
		prob := ProblemFromDomainError(err)
		if prob.Status >= http.StatusInternalServerError {
			span.RecordError(err)
			slog.ErrorContext(ctx, "procedure failed",
				slog.String("procedure", "feedback.submit"),
				slog.Any("error", err),
			)
		}
		problem.Write(w, prob)
		return
	}
	submissions.Add(ctx, 1)
	serde.WriteJSON(w, http.StatusOK, submitResponse{Success: true, ID: fb.ID})
}

func ProblemFromDomainError(err error) *problem.Problem {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return problem.Unauthorized("authentication required")
	case errors.Is(err, domain.ErrInvalidData):
		fields := map[string]string{}
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			for name, ferr := range verrs {
				fields[name] = ferr.Error()
			}
		}
		return problem.UnprocessableEntity("invalid input", problem.WithInvalidParams(fields))
	case errors.Is(err, domain.ErrFeedbackLimitReached):
		return problem.TooManyRequests(domain.LimitReachedMessage)
	case errors.Is(err, domain.ErrCollaboratorUnavailable):
		return problem.ServiceUnavailable("a backing service is unavailable, please retry later")
	default:
		return problem.Internal("server error")
	}
}
