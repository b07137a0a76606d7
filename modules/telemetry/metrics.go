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
package telemetry

import (
	"context"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	ProcedureHealth  = "healthz"
	ProcedureUnknown = "unknown"
)

var procedureName = regexp.MustCompile(`^[a-z]+\.[A-Za-z]+$`)

// Procedure maps a request path onto the bounded procedure label:
// "/rpc/profile.get" is "profile.get", "/healthz" is "healthz" and
// everything else is "unknown".
func Procedure(urlPath string) string {
	if urlPath == "/healthz" {
		return ProcedureHealth
	}
	name, ok := strings.CutPrefix(urlPath, "/rpc/")
	if !ok || len(name) > 64 || !procedureName.MatchString(name) {
		return ProcedureUnknown
	}
	return name
}

// RPCMetrics instruments the RPC surface per procedure.
type RPCMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
	respSize metric.Int64Histogram
}

func NewRPCMetrics(serviceName string) (*RPCMetrics, error) {
	meter := otel.Meter(serviceName)

	calls, err := meter.Int64Counter(
		"rpc_server_calls_total",
		metric.WithDescription("Procedure calls handled, by outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"rpc_server_duration",
		metric.WithDescription("Procedure call latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	respSize, err := meter.Int64Histogram(
		"rpc_server_response_size",
		metric.WithDescription("Procedure response body size"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &RPCMetrics{calls: calls, duration: duration, respSize: respSize}, nil
}

// Outcome buckets an HTTP status into ok, client_error or server_error.
func Outcome(status int) string {
	switch {
	case status >= 500:
		return "server_error"
	case status >= 400:
		return "client_error"
	default:
		return "ok"
	}
}

// RecordCall records one call of procedure answered with status.
func (m *RPCMetrics) RecordCall(ctx context.Context, procedure string, status int, durationMs float64, responseSize int64) {
	attrs := metric.WithAttributes(
		attribute.String("rpc.procedure", procedure),
		attribute.Int("http.response.status_code", status),
		attribute.String("rpc.outcome", Outcome(status)),
	)

	m.calls.Add(ctx, 1, attrs)
	m.duration.Record(ctx, durationMs, attrs)
	if responseSize > 0 {
		m.respSize.Record(ctx, responseSize, attrs)
	}
}
