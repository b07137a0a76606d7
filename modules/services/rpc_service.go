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

package services

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"foundermatch/modules/middleware"
	"foundermatch/modules/middleware/problem"
	"foundermatch/modules/server"
)

var _ server.RegistrableService = (*RPCService)(nil)

const (
	DefaultBodyLimit = 64 << 10
	UploadBodyLimit  = 12 << 20

	uploadProcedurePath = "/rpc/profile.uploadPhoto"
	healthTimeout       = 2 * time.Second
)

type (
	// Registrar mounts one bounded context's procedures.
	Registrar interface {
		Register(mux *http.ServeMux)
	}

	HealthCheckFunc func(ctx context.Context) error

	// RPCService mounts every procedure under /rpc/ behind body limits and
	// OpenAPI request validation, plus the health endpoint.
	RPCService struct {
		specFS      fs.FS
		specPath    string
		health      HealthCheckFunc
		apis        []Registrar
		middlewares []func(http.Handler) http.Handler
	}

	Option func(*RPCService)
)

func WithHealthCheck(fn HealthCheckFunc) Option {
	return func(s *RPCService) { s.health = fn }
}

// WithMiddlewares adds server wide middlewares contributed by this service,
// such as request throttling.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(s *RPCService) { s.middlewares = append(s.middlewares, mw...) }
}

func NewRPCService(specFS fs.FS, specPath string, apis []Registrar, opts ...Option) *RPCService {
	s := &RPCService{specFS: specFS, specPath: specPath, apis: apis}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RPCService) Register(mux *http.ServeMux) {
	rpc := http.NewServeMux()
	for _, api := range s.apis {
		api.Register(rpc)
	}

	validated := middleware.OpenAPIValidation(s.specFS, s.specPath,
		middleware.WriteValidationProblem,
		middleware.WriteSpecLoadProblem,
	)(rpc)

	mux.Handle("/rpc/", limitBody(validated))
	mux.HandleFunc("GET /healthz", s.healthz)
}

func (s *RPCService) Middlewares() []func(http.Handler) http.Handler {
	return s.middlewares
}

func (s *RPCService) healthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := s.health(ctx); err != nil {
			slog.WarnContext(ctx, "health check failed", slog.Any("error", err))
			problem.Write(w, problem.ServiceUnavailable("database unreachable"))
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// limitBody caps request bodies; photo uploads carry base64 images and get a larger cap.
func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := int64(DefaultBodyLimit)
		if r.URL.Path == uploadProcedurePath {
			limit = UploadBodyLimit
		}
		if r.ContentLength > limit {
			problem.Write(w, problem.PayloadTooLarge("request body is too large"))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next.ServeHTTP(w, r)
	})
}
