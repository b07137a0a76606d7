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

package pg

import (
	"context"
	"log/slog"
	"strings"

	"foundermatch/core/profile/domain"
	"foundermatch/modules/db"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
	"golang.org/x/sync/errgroup"
)

var _ domain.ProfileReadStore = (*PostgresProfileReader)(nil)

type PostgresProfileReader struct {
	table string
	pool  db.ReaderConnectionManager // calls Reader() at runtime
}

// NewPostgresProfileReader creates a reader that picks a replica per call.
// Reads use dynamic queries so replica selection stays a runtime decision.
func NewPostgresProfileReader(pool db.ReaderConnectionManager, table string) *PostgresProfileReader {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresProfileReader{
		table: table,
		pool:  pool,
	}
}

func (r *PostgresProfileReader) GetProfileByOwner(ctx context.Context, ownerID string) (*domain.Profile, error) {
	query := psql.Select(
		sm.Columns(columnsAny()...),
		sm.From(r.table),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(ownerID))),
	)

	row, err := bob.One(ctx, r.pool.Reader(), query, scan.StructMapper[ProfileRow]())
	if err != nil {
		return nil, wrapProfileError(err)
	}
	prof := toProfile(row)
	return &prof, nil
}

// ListProfilesByOffset runs the page and the count concurrently on one replica.
func (r *PostgresProfileReader) ListProfilesByOffset(ctx context.Context, limit, offset int) ([]domain.Profile, int, error) {
	if limit <= 0 || offset < 0 {
		return nil, 0, domain.ErrInvalidData
	}
	reader := r.pool.Reader()

	listQuery := psql.Select(
		sm.Columns(columnsAny()...),
		sm.From(r.table),
		sm.OrderBy("created_at").Desc(),
		sm.OrderBy("id").Desc(),
		sm.Limit(limit),
		sm.Offset(offset),
	)
	countQuery := psql.RawQuery("SELECT COUNT(*) FROM " + r.table)

	var (
		profiles []domain.Profile
		count    int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = bob.Allx[profileTransformer](gctx, reader, listQuery, scan.StructMapper[ProfileRow]())
		return err
	})
	g.Go(func() error {
		var err error
		count, err = bob.One(gctx, reader, countQuery, scan.SingleColumnMapper[int])
		return err
	})
	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "ListProfilesByOffset query error", slog.Any("err", err))
		return nil, 0, wrapProfileError(err)
	}
	if profiles == nil {
		profiles = []domain.Profile{}
	}
	return profiles, count, nil
}

func columnsAny() []any {
	out := make([]any, len(profileColumns))
	for i, c := range profileColumns {
		out[i] = c
	}
	return out
}

func returningClause() string {
	return strings.Join(profileColumns, ", ")
}
