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
package postgres

import (
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxConfigOption adjusts a parsed pool config before the pool is created.
type PgxConfigOption func(cfg *pgxpool.Config)

// PostgresOptions are applied to the primary and to every replica respectively.
type PostgresOptions struct {
	WriterOptions []PgxConfigOption
	ReaderOptions []PgxConfigOption
}

// ServiceOptions tags primary and replica sessions with the service name, the
// replica ones suffixed "-reader", so pg_stat_activity tells them apart.
func ServiceOptions(serviceName string) PostgresOptions {
	return PostgresOptions{
		WriterOptions: []PgxConfigOption{WithApplicationName(serviceName)},
		ReaderOptions: []PgxConfigOption{WithApplicationName(serviceName + "-reader")},
	}
}

// WithApplicationName sets the application_name startup parameter. An empty
// name keeps whatever the connection string carries.
func WithApplicationName(name string) PgxConfigOption {
	return func(cfg *pgxpool.Config) {
		if name == "" {
			return
		}
		if cfg.ConnConfig.RuntimeParams == nil {
			cfg.ConnConfig.RuntimeParams = map[string]string{}
		}
		cfg.ConnConfig.RuntimeParams["application_name"] = name
	}
}

// WithPgBouncerSimpleProtocol disables server-side prepared statements, which
// PgBouncer in transaction pooling mode cannot route.
func WithPgBouncerSimpleProtocol() PgxConfigOption {
	return func(cfg *pgxpool.Config) {
		cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}
}
