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
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"foundermatch/core/feedback/domain"
	"foundermatch/modules/db"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/scan"
)

const DefaultTable = "feedback"

var _ domain.FeedbackStore = (*PostgresFeedbackStore)(nil)

type (
	FeedbackRow struct {
		ID        int64     `db:"id"`
		UserID    string    `db:"user_id"`
		Content   string    `db:"content"`
		Status    string    `db:"status"`
		CreatedAt time.Time `db:"created_at"`
	}

	insertFeedbackArgs struct {
		UserID  string `db:"user_id"`
		Content string `db:"content"`
	}

	PostgresFeedbackStore struct {
		insertStmt bob.QueryStmt[insertFeedbackArgs, FeedbackRow, []FeedbackRow]
	}
)

// NewPostgresFeedbackStore prepares the insert on the primary. The quota
// trigger runs inside the same statement.
func NewPostgresFeedbackStore(ctx context.Context, pool db.ConnectionManager, table string) (*PostgresFeedbackStore, error) {
	if table == "" {
		table = DefaultTable
	}
	primary := pool.Writer().(bob.DB)

	insertQuery := psql.Insert(
		im.Into(table, "user_id", "content"),
		im.Values(
			bob.Named("user_id"),
			bob.Named("content"),
		),
		im.Returning("id", "user_id", "content", "status", "created_at"),
	)

	stmt, err := bob.PrepareQuery[insertFeedbackArgs](ctx, primary, insertQuery, scan.StructMapper[FeedbackRow]())
	if err != nil {
		return nil, fmt.Errorf("prepare insert feedback: %w", err)
	}
	return &PostgresFeedbackStore{insertStmt: stmt}, nil
}

func (s *PostgresFeedbackStore) InsertFeedback(ctx context.Context, ownerID, content string) (*domain.Feedback, error) {
	row, err := s.insertStmt.One(ctx, insertFeedbackArgs{
		UserID:  ownerID,
		Content: content,
	})
	if err != nil {
		return nil, wrapFeedbackError(err)
	}
	return &domain.Feedback{
		ID:        row.ID,
		OwnerID:   row.UserID,
		Content:   row.Content,
		Status:    domain.Status(row.Status),
		CreatedAt: row.CreatedAt,
	}, nil
}

// wrapFeedbackError maps the quota trigger's exception to the domain error.
func wrapFeedbackError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "P0001": // raise_exception
			if strings.Contains(strings.ToLower(pgErr.Message), "limit reached") {
				return domain.ErrFeedbackLimitReached
			}
		case "23514": // check_violation
			return fmt.Errorf("%w: %s", domain.ErrInvalidData, pgErr.ConstraintName)
		}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("insert returned no row: %w", err)
	}
	return err
}
