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
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"foundermatch/modules/appconfig"
	"foundermatch/modules/clock"
	"foundermatch/modules/db/postgres"
	"foundermatch/modules/db/redis"
	"foundermatch/modules/db/redis/counter"
	"foundermatch/modules/identity"
	"foundermatch/modules/middleware"
	"foundermatch/modules/middleware/ratelimit"
	"foundermatch/modules/oapi"
	"foundermatch/modules/objectstore"
	rl "foundermatch/modules/ratelimit"
	"foundermatch/modules/server"
	"foundermatch/modules/services"
	"foundermatch/modules/telemetry"

	feedback_pg "foundermatch/core/feedback/adapters/persistence/pg"
	feedback_rest "foundermatch/core/feedback/adapters/rest"
	feedback "foundermatch/core/feedback/domain"
	profile_pg "foundermatch/core/profile/adapters/persistence/pg"
	profile_rest "foundermatch/core/profile/adapters/rest"
	profile_storage "foundermatch/core/profile/adapters/storage"
	profile "foundermatch/core/profile/domain"

	"github.com/spf13/cobra"
)

const (
	profilesTable = "founder_profiles"
	feedbackTable = "feedback"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the RPC server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configFrom(cmd))
		},
	}
}

// serve wires every dependency by hand and blocks until ctx is cancelled.
func serve(ctx context.Context, cfg *appconfig.Config) error {
	otelShutdown, err := telemetry.Init(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("telemetry not properly configured: %w", err)
	}
	defer func() {
		if err := otelShutdown(context.WithoutCancel(ctx)); err != nil {
			slog.ErrorContext(ctx, "telemetry shutdown error", slog.Any("error", err))
		}
	}()

	// --- infrastructure ---

	if cfg.Postgres.AutoMigrate {
		if err := postgres.NewMigrator(&cfg.Postgres.WriteConfig, cfg.Postgres.MigrationsDir).Up(); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}

	pool, err := postgres.New(ctx, &cfg.Postgres, postgres.ServiceOptions(cfg.Otel.ServiceName))
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() {
		if err := pool.Shutdown(ctx); err != nil {
			slog.ErrorContext(ctx, "database shutdown error", slog.Any("error", err))
		}
	}()

	if err := pool.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}

	objects, err := objectstore.New(cfg.Storage)
	if err != nil {
		return err
	}
	if err := objects.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("object storage: %w", err)
	}

	verifier, err := identity.New(ctx, cfg.Identity)
	if err != nil {
		return fmt.Errorf("identity: %w", err)
	}

	limiterFactory, closeLimiter, err := newLimiterFactory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLimiter()

	slog.DebugContext(ctx, "rate limit config", slog.Any("rate_limit_config", cfg.RateLimit))

	policy, err := ratelimit.ParsePolicy(limiterFactory, &cfg.RateLimit, ratelimit.PathRouteInfo, ratelimit.KeyStrategies())
	if err != nil {
		return fmt.Errorf("ratelimit config not properly parsed: %w", err)
	}

	// --- application layer ---

	profileWriter, err := profile_pg.NewPostgresProfileWriter(ctx, pool, profilesTable)
	if err != nil {
		return fmt.Errorf("profile writer: %w", err)
	}
	profileApp := profile.NewApp(
		profile_pg.NewPostgresProfileReader(pool, profilesTable),
		profileWriter,
		profile_storage.NewPhotoStore(objects),
	)

	feedbackStore, err := feedback_pg.NewPostgresFeedbackStore(ctx, pool, feedbackTable)
	if err != nil {
		return fmt.Errorf("feedback store: %w", err)
	}
	feedbackApp := feedback.NewApp(feedbackStore)

	rpcMetrics, err := telemetry.NewRPCMetrics(cfg.Otel.ServiceName)
	if err != nil {
		slog.WarnContext(ctx, "failed to initialize RPC metrics, continuing without metrics", slog.Any("error", err))
		rpcMetrics = nil
	}

	rpc := services.NewRPCService(oapi.FS, oapi.SpecPath,
		[]services.Registrar{
			profile_rest.NewProfileAPI(profileApp),
			feedback_rest.NewFeedbackAPI(feedbackApp),
		},
		services.WithHealthCheck(pool.HealthCheck),
		services.WithMiddlewares(ratelimit.NewRateLimitMiddleware(policy)),
	)

	srv, err := server.New(cfg.HTTP.Host, cfg.HTTP.Port,
		server.WithReadTimeout(cfg.HTTP.ReadTimeout),
		server.WithWriteTimeout(cfg.HTTP.WriteTimeout),
		server.WithServices(rpc),
		server.WithGlobalMiddlewares(
			middleware.Recovery(nil),
			middleware.Telemetry(rpcMetrics),
			middleware.RequestID,
			middleware.CORS(cfg.CORS),
			middleware.Authenticate(verifier),
		),
	)
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	return srv.Run(ctx)
}

// newLimiterFactory picks the counter backend. Redis counters are shared by
// every replica; the memory backend only suits a single instance.
func newLimiterFactory(ctx context.Context, cfg *appconfig.Config) (rl.LimiterFactory, func(), error) {
	clk := clock.RealClockProvider()

	switch cfg.RateLimitBackend {
	case appconfig.BackendMemory:
		slog.WarnContext(ctx, "rate limits are kept in process memory")
		return rl.TokenBucketFactory(clk), func() {}, nil

	case appconfig.BackendRedis:
		client, err := redis.NewRueidisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("redis not properly setup: %w", err)
		}
		store := counter.NewRedisCounterStore(client, cfg.Redis.KeyPrefix)
		return rl.SlidingWindowFactory(clk, store, "rl"), client.Close, nil

	default:
		return nil, nil, errors.New("unknown rate limit backend " + cfg.RateLimitBackend)
	}
}
