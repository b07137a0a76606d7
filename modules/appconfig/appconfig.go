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
package appconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"foundermatch/modules/db/postgres"
	"foundermatch/modules/db/redis"
	"foundermatch/modules/identity"
	"foundermatch/modules/middleware"
	"foundermatch/modules/middleware/ratelimit"
	"foundermatch/modules/objectstore"
	"foundermatch/modules/telemetry"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"

	FormatText = "text"
	FormatJSON = "json"

	defaultEnvFile = ".env"
)

type (
	Config struct {
		Env string `env:"ENV" envDefault:"dev"`

		Log  LogConfig  `envPrefix:"LOG_"`
		HTTP HTTPConfig `envPrefix:"HTTP_"`

		// --- core infra ----
		Redis    redis.RedisConfig                 `envPrefix:"REDIS_"`
		Postgres postgres.PostgresConnectionConfig `envPrefix:"POSTGRES_"`
		Storage  objectstore.Config                `envPrefix:"STORAGE_"`
		Identity identity.Config                   `envPrefix:"IDENTITY_"`

		// --- middlewares ----
		CORS             middleware.CORSConfig    `envPrefix:"CORS_"`
		RateLimit        ratelimit.RestHTTPConfig `envPrefix:"RATE_LIMIT_"`
		RateLimitBackend string                   `env:"RATE_LIMIT_BACKEND" envDefault:"redis"`

		// --- otel ----
		// OTel variables have their own naming convention, so no prefix here.
		Otel telemetry.Config
	}

	LogConfig struct {
		Level  slog.Level `env:"LEVEL"  envDefault:"info"`
		Format string     `env:"FORMAT" envDefault:"text"`
	}

	HTTPConfig struct {
		Host         string        `env:"HOST"          envDefault:"0.0.0.0"`
		Port         int           `env:"PORT"          envDefault:"8080"`
		ReadTimeout  time.Duration `env:"READ_TIMEOUT"  envDefault:"15s"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	}
)

// Load reads an optional dotenv file (ENV_FILE, default .env) into the
// process environment, then parses and validates the configuration.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	file := os.Getenv("ENV_FILE")
	if file == "" {
		file = defaultEnvFile
	}
	if err := godotenv.Load(file); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("appconfig: load %s: %w", file, err)
		}
		slog.Debug("no dotenv file", slog.String("file", file))
	}
	return Parse()
}

// Parse builds the configuration from the process environment only.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("appconfig: parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("appconfig: %w", err)
	}
	cfg.RateLimit.ApplyDefaults()

	return &cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	return validation.Errors{
		"log": validation.ValidateStruct(&c.Log,
			validation.Field(&c.Log.Format, validation.In(FormatText, FormatJSON)),
		),
		"http": validation.ValidateStruct(&c.HTTP,
			validation.Field(&c.HTTP.Port, validation.Min(0), validation.Max(65535)),
		),
		"identity": c.Identity.Validate(),
		"storage": validation.ValidateStruct(&c.Storage,
			validation.Field(&c.Storage.Endpoint, validation.Required),
			validation.Field(&c.Storage.Bucket, validation.Required),
		),
		"redis": validation.ValidateStruct(&c.Redis,
			validation.Field(&c.Redis.URL, validation.When(c.RateLimitBackend == BackendRedis, validation.Required)),
		),
		"rate_limit_backend": validation.Validate(c.RateLimitBackend,
			validation.Required,
			validation.In(BackendRedis, BackendMemory),
		),
	}.Filter()
}

// Logger builds the process logger described by the config.
func (c LogConfig) Logger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level}
	if c.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
