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
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"foundermatch/core/profile/domain"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const DefaultTable = "founder_profiles"

var profileColumns = []string{
	"id", "user_id", "name", "age", "current_occupation", "time_commitment",
	"is_technical", "has_idea", "skill_areas", "idea", "looking_for", "skills",
	"linked_in", "photo_url", "profile_completed",
	"created_at", "updated_at", "last_active_at",
}

type (
	// ProfileRow is the persistence entity shape used by storage adapters.
	ProfileRow struct {
		ID               uuid.UUID      `db:"id"`
		UserID           string         `db:"user_id"`
		Name             string         `db:"name"`
		Age              sql.NullInt32  `db:"age"`
		Occupation       sql.NullString `db:"current_occupation"`
		TimeCommitment   sql.NullString `db:"time_commitment"`
		IsTechnical      sql.NullBool   `db:"is_technical"`
		HasIdea          sql.NullBool   `db:"has_idea"`
		SkillAreas       skillAreaList  `db:"skill_areas"`
		Idea             sql.NullString `db:"idea"`
		LookingFor       sql.NullString `db:"looking_for"`
		Skills           sql.NullString `db:"skills"`
		LinkedIn         sql.NullString `db:"linked_in"`
		PhotoURL         sql.NullString `db:"photo_url"`
		ProfileCompleted sql.NullBool   `db:"profile_completed"`
		CreatedAt        time.Time      `db:"created_at"`
		UpdatedAt        time.Time      `db:"updated_at"`
		LastActiveAt     time.Time      `db:"last_active_at"`
	}

	// skillAreaList is stored as a jsonb array.
	skillAreaList []domain.SkillArea
)

func (l skillAreaList) Value() (driver.Value, error) {
	if l == nil {
		l = skillAreaList{}
	}
	b, err := json.Marshal([]domain.SkillArea(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *skillAreaList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = skillAreaList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("skill_areas: unsupported source type %T", src)
	}
	var out []domain.SkillArea
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("skill_areas: %w", err)
	}
	if out == nil {
		out = []domain.SkillArea{}
	}
	*l = out
	return nil
}

// toProfile converts a ProfileRow to a domain Profile.
func toProfile(row ProfileRow) domain.Profile {
	p := domain.Profile{
		ID:               row.ID,
		OwnerID:          row.UserID,
		Name:             row.Name,
		Occupation:       domain.Occupation(row.Occupation.String),
		TimeCommitment:   domain.TimeCommitment(row.TimeCommitment.String),
		IsTechnical:      row.IsTechnical.Bool,
		HasIdea:          row.HasIdea.Bool,
		SkillAreas:       []domain.SkillArea(row.SkillAreas),
		Idea:             nullString(row.Idea),
		LookingFor:       nullString(row.LookingFor),
		Skills:           nullString(row.Skills),
		LinkedIn:         nullString(row.LinkedIn),
		PhotoURL:         nullString(row.PhotoURL),
		ProfileCompleted: row.ProfileCompleted.Bool,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
		LastActiveAt:     row.LastActiveAt,
	}
	if p.SkillAreas == nil {
		p.SkillAreas = []domain.SkillArea{}
	}
	if row.Age.Valid {
		age := int(row.Age.Int32)
		p.Age = &age
	}
	return p
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// profileTransformer implements bob's transformer interface for automatic row to domain conversion.
type profileTransformer struct{}

func (profileTransformer) TransformScanned(rows []ProfileRow) ([]domain.Profile, error) {
	out := make([]domain.Profile, len(rows))
	for i, r := range rows {
		out[i] = toProfile(r)
	}
	return out, nil
}

// wrapProfileError centralizes mapping of DB errors to domain errors.
func wrapProfileError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrProfileNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23514": // check_violation
			return fmt.Errorf("%w: %s", domain.ErrInvalidData, pgErr.ConstraintName)
		case "22P02": // invalid_text_representation (enum)
			return fmt.Errorf("%w: %s", domain.ErrInvalidData, pgErr.Message)
		}
	}

	return err
}
