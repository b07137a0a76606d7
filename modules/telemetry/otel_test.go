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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestBuildSampler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ratio float64
		want  string
	}{
		{name: "never", ratio: 0, want: sdktrace.NeverSample().Description()},
		{name: "negative", ratio: -1, want: sdktrace.NeverSample().Description()},
		{name: "always", ratio: 1, want: sdktrace.AlwaysSample().Description()},
		{name: "above one", ratio: 2, want: sdktrace.AlwaysSample().Description()},
		{name: "ratio", ratio: 0.25, want: sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.25)).Description()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, buildSampler(tt.ratio).Description())
		})
	}
}

func TestInit(t *testing.T) {
	t.Parallel()

	t.Run("service name required", func(t *testing.T) {
		t.Parallel()
		_, err := Init(context.Background(), Config{Mode: ModeOff})
		require.Error(t, err)
	})

	t.Run("unknown mode", func(t *testing.T) {
		t.Parallel()
		_, err := Init(context.Background(), Config{ServiceName: "foundermatch", Mode: "sideways"})
		require.ErrorContains(t, err, "unknown Mode")
	})

	t.Run("off", func(t *testing.T) {
		t.Parallel()
		shutdown, err := Init(context.Background(), Config{ServiceName: "foundermatch", Mode: ModeOff})
		require.NoError(t, err)
		require.NoError(t, shutdown(context.Background()))
	})
}

func TestMetricsFallbacks(t *testing.T) {
	t.Parallel()

	cfg := Config{Protocol: "grpc", OTLPEndpoint: "collector:4317"}
	assert.Equal(t, "grpc", cfg.metricsProtocol())
	assert.Equal(t, "collector:4317", cfg.metricsEndpoint())

	cfg.MetricsProtocol = "http/protobuf"
	cfg.MetricsEndpoint = "http://collector:4318/v1/metrics"
	assert.Equal(t, "http/protobuf", cfg.metricsProtocol())
	assert.Equal(t, "http://collector:4318/v1/metrics", cfg.metricsEndpoint())
}
