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

package middleware

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"foundermatch/modules/middleware/problem"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	nethttpmiddleware "github.com/oapi-codegen/nethttp-middleware"
)

// ValidationErrorHandler handles OpenAPI validation errors and writes an appropriate response.
type ValidationErrorHandler func(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, statusCode int)

// SpecLoadErrorHandler handles errors that occur when loading the OpenAPI spec.
type SpecLoadErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// specCache holds cached OpenAPI specs keyed by file path.
var (
	specCacheMu sync.RWMutex
	specCache   = make(map[specCacheKey]*specCacheEntry)
)

type specCacheKey struct {
	path string
}

type specCacheEntry struct {
	doc *openapi3.T
	err error
}

func loadSpec(fsys fs.FS, specPath string) (*openapi3.T, error) {
	key := specCacheKey{path: specPath}

	specCacheMu.RLock()
	if entry, ok := specCache[key]; ok {
		specCacheMu.RUnlock()
		return entry.doc, entry.err
	}
	specCacheMu.RUnlock()

	specCacheMu.Lock()
	defer specCacheMu.Unlock()

	if entry, ok := specCache[key]; ok {
		return entry.doc, entry.err
	}

	data, err := fs.ReadFile(fsys, specPath)
	if err != nil {
		specCache[key] = &specCacheEntry{doc: nil, err: err}
		return nil, err
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err == nil {
		err = doc.Validate(loader.Context)
	}

	specCache[key] = &specCacheEntry{doc: doc, err: err}
	return doc, err
}

// OpenAPIValidation creates a middleware that validates requests against the
// OpenAPI document at specPath in specFS. The errorHandler is called when
// validation fails, the loadErrorHandler when the document cannot be loaded.
func OpenAPIValidation(
	specFS fs.FS,
	specPath string,
	errorHandler ValidationErrorHandler,
	loadErrorHandler SpecLoadErrorHandler,
) func(http.Handler) http.Handler {
	spec, err := loadSpec(specFS, specPath)
	if err != nil {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				loadErrorHandler(w, r, err)
			})
		}
	}

	opts := &nethttpmiddleware.Options{
		Options:               openapi3filter.Options{MultiError: true},
		DoNotValidateServers:  true,
		SilenceServersWarning: true,
		ErrorHandlerWithOpts: func(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, eopts nethttpmiddleware.ErrorHandlerOpts) {
			status := eopts.StatusCode
			if status == 0 {
				status = http.StatusBadRequest
			}
			if hint := InferBodyValidationStatus(err); hint == http.StatusUnprocessableEntity {
				status = http.StatusUnprocessableEntity
			}
			errorHandler(ctx, err, w, r, status)
		},
	}

	return nethttpmiddleware.OapiRequestValidatorWithOptions(spec, opts)
}

// WriteValidationProblem renders OpenAPI request validation failures as problems.
// Schema violations of a well formed body become VALIDATION_FAILED, anything
// else (unknown procedure, unreadable JSON) a plain status problem.
func WriteValidationProblem(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, statusCode int) {
	slog.DebugContext(ctx, "request rejected by openapi validation",
		slog.String("url", r.URL.Path),
		slog.Any("error", err),
	)

	fields := make(map[string]string)
	for _, ve := range ExtractValidationErrors(err) {
		if _, seen := fields[ve.Field]; !seen {
			fields[ve.Field] = ve.Reason
		}
	}

	switch statusCode {
	case http.StatusUnprocessableEntity:
		problem.Write(w, problem.UnprocessableEntity("request body does not match the procedure schema",
			problem.WithInvalidParams(fields)))
	case http.StatusNotFound:
		problem.Write(w, problem.NotFound("unknown procedure"))
	case http.StatusMethodNotAllowed:
		problem.Write(w, problem.MethodNotAllowed("procedures are invoked with POST"))
	default:
		problem.Write(w, problem.BadRequest("malformed request", problem.WithInvalidParams(fields)))
	}
}

// WriteSpecLoadProblem answers every request with 500 when the embedded document is broken.
func WriteSpecLoadProblem(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "openapi document failed to load", slog.Any("error", err))
	problem.Write(w, problem.Internal("request validation is misconfigured"))
}
