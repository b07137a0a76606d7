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

package problem

import (
	"encoding/json"
	"net/http"
	"sort"
)

// Machine readable codes carried in the "code" member.
const (
	CodeBadRequest              = "BAD_REQUEST"
	CodeUnauthenticated         = "UNAUTHENTICATED"
	CodeForbidden               = "FORBIDDEN"
	CodeNotFound                = "NOT_FOUND"
	CodeMethodNotAllowed        = "METHOD_NOT_ALLOWED"
	CodePayloadTooLarge         = "PAYLOAD_TOO_LARGE"
	CodeValidationFailed        = "VALIDATION_FAILED"
	CodeRateLimited             = "RATE_LIMITED"
	CodeCollaboratorUnavailable = "COLLABORATOR_UNAVAILABLE"
	CodeInternal                = "INTERNAL"
)

// TraceHeader is copied into traceId when the problem does not carry one.
const TraceHeader = "X-Request-ID"

// Problem is an RFC7807 Problem Details document with optional extensions.
// It mirrors the OpenAPI Problem schema used across services.
type Problem struct {
	Code          *string         `json:"code,omitempty"`
	Detail        *string         `json:"detail,omitempty"`
	Instance      *string         `json:"instance,omitempty"`
	InvalidParams *[]InvalidParam `json:"invalidParams,omitempty"`
	Status        int             `json:"status"`
	Title         string          `json:"title"`
	TraceID       *string         `json:"traceId,omitempty"`
	Type          *string         `json:"type,omitempty"`

	// Extensions holds additional non-standard fields.
	Extensions map[string]any `json:"-"`
}

type InvalidParam struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type Option func(*Problem)

func New(opts ...Option) *Problem {
	p := &Problem{
		Type:   strPtr("about:blank"),
		Title:  http.StatusText(http.StatusInternalServerError),
		Status: http.StatusInternalServerError,
		Detail: strPtr("unhandled error"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.Type == nil {
		p.Type = strPtr("about:blank")
	}
	if p.Title == "" {
		if t := http.StatusText(p.Status); t != "" {
			p.Title = t
		} else {
			p.Title = "Unknown Error"
		}
	}
	return p
}

func Write(w http.ResponseWriter, p *Problem) {
	if p == nil {
		p = Internal("server error")
	}
	if p.TraceID == nil {
		if id := w.Header().Get(TraceHeader); id != "" {
			p.TraceID = strPtr(id)
		}
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func WithStatus(status int) Option {
	return func(p *Problem) { p.Status = status }
}

func WithTitle(title string) Option {
	return func(p *Problem) { p.Title = title }
}

func WithDetail(detail string) Option {
	return func(p *Problem) { p.Detail = strPtr(detail) }
}

func WithType(typ string) Option {
	return func(p *Problem) { p.Type = strPtr(typ) }
}

func WithCode(code string) Option {
	return func(p *Problem) { p.Code = strPtr(code) }
}

func WithTraceID(traceID string) Option {
	return func(p *Problem) { p.TraceID = strPtr(traceID) }
}

func WithInvalidParam(name, reason string) Option {
	return func(p *Problem) {
		if p.InvalidParams == nil {
			s := []InvalidParam{{Name: name, Reason: reason}}
			p.InvalidParams = &s
			return
		}
		s := append(*p.InvalidParams, InvalidParam{Name: name, Reason: reason})
		p.InvalidParams = &s
	}
}

// WithInvalidParams appends one entry per field, ordered by field name.
func WithInvalidParams(fields map[string]string) Option {
	return func(p *Problem) {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			WithInvalidParam(name, fields[name])(p)
		}
	}
}

func WithExtension(key string, value any) Option {
	return func(p *Problem) {
		if p.Extensions == nil {
			p.Extensions = map[string]any{}
		}
		p.Extensions[key] = value
	}
}

func BadRequest(detail string, opts ...Option) *Problem {
	return withStatus(http.StatusBadRequest, CodeBadRequest, detail, opts)
}

func Unauthorized(detail string, opts ...Option) *Problem {
	return withStatus(http.StatusUnauthorized, CodeUnauthenticated, detail, opts)
}

func Forbidden(detail string, opts ...Option) *Problem {
	return withStatus(http.StatusForbidden, CodeForbidden, detail, opts)
}

func NotFound(detail string, opts ...Option) *Problem {
	return withStatus(http.StatusNotFound, CodeNotFound, detail, opts)
}

func PayloadTooLarge(detail string, opts ...Option) *Problem {
	return withStatus(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, detail, opts)
}

func UnprocessableEntity(detail string, opts ...Option) *Problem {
	return withStatus(http.StatusUnprocessableEntity, CodeValidationFailed, detail, opts)
}

func ServiceUnavailable(detail string, opts ...Option) *Problem {
	return withStatus(http.StatusServiceUnavailable, CodeCollaboratorUnavailable, detail, opts)
}

// withStatus builds a problem titled after the status text; opts run last.
func withStatus(status int, code, detail string, opts []Option) *Problem {
	base := []Option{
		WithTitle(http.StatusText(status)),
		WithStatus(status),
		WithCode(code),
		WithDetail(detail),
	}
	return New(append(base, opts...)...)
}

func MethodNotAllowed(detail string, opts ...Option) *Problem {
	return withStatus(http.StatusMethodNotAllowed, CodeMethodNotAllowed, detail, opts)
}

func TooManyRequests(detail string, opts ...Option) *Problem {
	return withStatus(http.StatusTooManyRequests, CodeRateLimited, detail, opts)
}

func Internal(detail string, opts ...Option) *Problem {
	return withStatus(http.StatusInternalServerError, CodeInternal, detail, opts)
}

func strPtr(s string) *string { return &s }

// MarshalJSON merges Extensions into the base Problem object.
func (p Problem) MarshalJSON() ([]byte, error) {
	// alias drops the method set so json.Marshal does not recurse into MarshalJSON.
	type alias Problem
	base, err := json.Marshal(alias(p))
	if err != nil {
		return nil, err
	}
	if len(p.Extensions) == 0 {
		return base, nil
	}
	var m map[string]any
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range p.Extensions {
		if _, exists := m[k]; !exists {
			m[k] = v
		}
	}
	return json.Marshal(m)
}
