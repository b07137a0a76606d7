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
	"bytes"
	"embed"
	"io"
	"log/slog"
	"net/url"

	"github.com/amacneil/dbmate/v2/pkg/dbmate"
	_ "github.com/amacneil/dbmate/v2/pkg/driver/postgres"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator applies the embedded migrations with dbmate.
type Migrator struct {
	dbm *dbmate.DB
	dir string
	url *url.URL
}

func NewMigrator(cfg *PoolConfig, dir string) *Migrator {
	u := cfg.URL()
	dbm := dbmate.New(u)
	dbm.FS = migrationsFS
	dbm.MigrationsDir = []string{"migrations"}
	dbm.AutoDumpSchema = false
	dbm.Log = slogWriter{}
	return &Migrator{dbm: dbm, dir: dir, url: u}
}

func (m *Migrator) Up() error {
	return m.dbm.CreateAndMigrate()
}

func (m *Migrator) Down() error {
	return m.dbm.Rollback()
}

// Pending returns the number of migrations not yet applied.
func (m *Migrator) Pending() (int, error) {
	return m.dbm.Status(true)
}

// New writes an empty migration into the on-disk migrations directory.
func (m *Migrator) New(name string) error {
	dbm := dbmate.New(m.url)
	dbm.MigrationsDir = []string{m.dir}
	dbm.AutoDumpSchema = false
	dbm.Log = slogWriter{}
	return dbm.NewMigration(name)
}

// slogWriter forwards dbmate's progress output to the default logger.
type slogWriter struct{}

func (slogWriter) Write(p []byte) (int, error) {
	for line := range bytes.Lines(p) {
		if msg := string(bytes.TrimSpace(line)); msg != "" {
			slog.Info(msg, slog.String("component", "dbmate"))
		}
	}
	return len(p), nil
}

var _ io.Writer = slogWriter{}
