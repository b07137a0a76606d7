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
	"context"
	"log/slog"
	"net/http"

	"foundermatch/modules/middleware/problem"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// writeError logs err at a level matching its cause and writes the mapped problem.
func writeError(ctx context.Context, w http.ResponseWriter, procedure string, err error) {
	prob := ProblemFromDomainError(err)

	if prob.Status >= http.StatusInternalServerError {
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, procedure)
		slog.ErrorContext(ctx, "procedure failed",
			slog.String("procedure", procedure),
			slog.Any("error", err),
		)
	} else {
		slog.DebugContext(ctx, "procedure rejected",
			slog.String("procedure", procedure),
			slog.Any("error", err),
		)
	}

	problem.Write(w, prob)
}
