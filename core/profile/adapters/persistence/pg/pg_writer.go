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
	"fmt"
	"time"

	"foundermatch/core/profile/domain"
	"foundermatch/modules/db"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"
)

var _ domain.ProfileWriteStore = (*PostgresProfileWriter)(nil)

type (
	PostgresProfileWriter struct {
		table string
		db    *bob.DB // for prepared statements on primary

		touchStmt bob.QueryStmt[touchProfileArgs, string, []string]
	}

	touchProfileArgs struct {
		UserID       string    `db:"user_id"`
		LastActiveAt time.Time `db:"last_active_at"`
	}
)

// NewPostgresProfileWriter creates a new writer with prepared statements bound to the primary.
func NewPostgresProfileWriter(ctx context.Context, pool db.ConnectionManager, table string) (*PostgresProfileWriter, error) {
	if table == "" {
		table = DefaultTable
	}
	primary := pool.Writer().(bob.DB)

	w := &PostgresProfileWriter{
		table: table,
		db:    &primary,
	}

	// UPDATE ... SET last_active_at = :last_active_at WHERE user_id = :user_id RETURNING user_id
	touchQuery := psql.Update(
		um.Table(table),
		um.SetCol("last_active_at").To(bob.Named("last_active_at")),
		um.Where(psql.Quote("user_id").EQ(bob.Named("user_id"))),
		um.Returning("user_id"),
	)
	touchStmt, err := bob.PrepareQuery[touchProfileArgs](ctx, primary, touchQuery, scan.SingleColumnMapper[string])
	if err != nil {
		return nil, fmt.Errorf("prepare touch profile: %w", err)
	}
	w.touchStmt = touchStmt

	return w, nil
}

// UpsertProfile implements ProfileWriteStore.
//
// Optional free text columns are only overwritten when a value is supplied.
// Concurrent saves for one owner serialize on the user_id unique index.
func (w *PostgresProfileWriter) UpsertProfile(ctx context.Context, params *domain.UpsertProfileParams) (*domain.Profile, error) {
	raw := fmt.Sprintf(`
		INSERT INTO %[1]s AS t (
			user_id, name, age, current_occupation, time_commitment,
			is_technical, has_idea, skill_areas,
			idea, looking_for, skills, linked_in, photo_url, profile_completed
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (user_id) DO UPDATE SET
			name               = EXCLUDED.name,
			age                = EXCLUDED.age,
			current_occupation = EXCLUDED.current_occupation,
			time_commitment    = EXCLUDED.time_commitment,
			is_technical       = EXCLUDED.is_technical,
			has_idea           = EXCLUDED.has_idea,
			skill_areas        = EXCLUDED.skill_areas,
			idea               = COALESCE(EXCLUDED.idea, t.idea),
			looking_for        = COALESCE(EXCLUDED.looking_for, t.looking_for),
			skills             = COALESCE(EXCLUDED.skills, t.skills),
			linked_in          = COALESCE(EXCLUDED.linked_in, t.linked_in),
			photo_url          = COALESCE(EXCLUDED.photo_url, t.photo_url),
			profile_completed  = EXCLUDED.profile_completed,
			updated_at         = now()
		RETURNING %[2]s
	`, w.table, returningClause())

	q := psql.RawQuery(raw,
		params.OwnerID,
		params.Name,
		params.Age,
		string(params.Occupation),
		string(params.TimeCommitment),
		params.IsTechnical,
		params.HasIdea,
		skillAreaList(params.SkillAreas),
		params.Idea,
		params.LookingFor,
		params.Skills,
		params.LinkedIn,
		params.PhotoURL,
		params.ProfileCompleted,
	)

	row, err := bob.One(ctx, w.db, q, scan.StructMapper[ProfileRow]())
	if err != nil {
		return nil, wrapProfileError(err)
	}
	p := toProfile(row)
	return &p, nil
}

// TouchLastActive implements ProfileWriteStore.
func (w *PostgresProfileWriter) TouchLastActive(ctx context.Context, ownerID string, at time.Time) error {
	_, err := w.touchStmt.One(ctx, touchProfileArgs{
		UserID:       ownerID,
		LastActiveAt: at,
	})
	return wrapProfileError(err)
}

// DeleteProfile implements ProfileWriteStore. The delete is a hard delete.
func (w *PostgresProfileWriter) DeleteProfile(ctx context.Context, ownerID string) error {
	query := psql.Delete(
		dm.From(w.table),
		dm.Where(psql.Quote("user_id").EQ(psql.Arg(ownerID))),
	)
	if _, err := bob.Exec(ctx, w.db, query); err != nil {
		return wrapProfileError(err)
	}
	return nil
}
