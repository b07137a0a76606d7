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

package domain

import (
	"context"
	"fmt"
	"testing"

	"foundermatch/modules/principal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProfiles(t *testing.T, f *fixture, n int) {
	t.Helper()
	for i := range n {
		owner := fmt.Sprintf("u%d", i+1)
		require.NoError(t, f.app.UpsertProfile(context.Background(), &principal.Principal{ID: owner}, annInput(owner)))
	}
}

func TestListProfiles(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		seedProfiles(t, f, 3)

		page, err := f.app.ListProfiles(context.Background(), ListProfilesParams{})
		require.NoError(t, err)
		assert.Equal(t, DefaultPageLimit, page.Limit)
		assert.Zero(t, page.Offset)
		assert.Equal(t, 3, page.Total)
		assert.False(t, page.HasMore)
		assert.Len(t, page.Data, 3)
	})

	t.Run("newest first", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		seedProfiles(t, f, 3)

		page, err := f.app.ListProfiles(context.Background(), ListProfilesParams{})
		require.NoError(t, err)
		for i := 1; i < len(page.Data); i++ {
			assert.False(t, page.Data[i].CreatedAt.After(page.Data[i-1].CreatedAt))
		}
		assert.Equal(t, "u3", page.Data[0].OwnerID)
	})

	t.Run("pages are disjoint and totals stable", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		seedProfiles(t, f, 5)

		first, err := f.app.ListProfiles(context.Background(), ListProfilesParams{Limit: ptr(2)})
		require.NoError(t, err)
		second, err := f.app.ListProfiles(context.Background(), ListProfilesParams{Limit: ptr(2), Offset: ptr(2)})
		require.NoError(t, err)
		last, err := f.app.ListProfiles(context.Background(), ListProfilesParams{Limit: ptr(2), Offset: ptr(4)})
		require.NoError(t, err)

		assert.Equal(t, 5, first.Total)
		assert.Equal(t, first.Total, second.Total)
		assert.True(t, first.HasMore)
		assert.True(t, second.HasMore)
		assert.False(t, last.HasMore)
		assert.Len(t, last.Data, 1)
		assert.NotEqual(t, first.Data[0].OwnerID, second.Data[0].OwnerID)
	})

	t.Run("excluded owner is filtered out", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		seedProfiles(t, f, 3)

		page, err := f.app.ListProfiles(context.Background(), ListProfilesParams{ExcludeOwnerID: "u2"})
		require.NoError(t, err)
		assert.Equal(t, 2, page.Total)
		assert.Len(t, page.Data, 2)
		for _, p := range page.Data {
			assert.NotEqual(t, "u2", p.OwnerID)
		}
	})

	t.Run("exclusion outside the page leaves total alone", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		seedProfiles(t, f, 3)

		page, err := f.app.ListProfiles(context.Background(), ListProfilesParams{ExcludeOwnerID: "u1", Limit: ptr(1)})
		require.NoError(t, err)
		assert.Equal(t, 3, page.Total)
		assert.Len(t, page.Data, 1)
	})

	t.Run("offset beyond total", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		seedProfiles(t, f, 2)

		page, err := f.app.ListProfiles(context.Background(), ListProfilesParams{Offset: ptr(10)})
		require.NoError(t, err)
		assert.NotNil(t, page.Data)
		assert.Empty(t, page.Data)
		assert.Equal(t, 2, page.Total)
		assert.False(t, page.HasMore)
	})

	bounds := []struct {
		name   string
		params ListProfilesParams
		field  string
	}{
		{"zero limit", ListProfilesParams{Limit: ptr(0)}, "limit"},
		{"limit above max", ListProfilesParams{Limit: ptr(101)}, "limit"},
		{"negative offset", ListProfilesParams{Offset: ptr(-1)}, "offset"},
	}
	for _, tc := range bounds {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture()
			_, err := f.app.ListProfiles(context.Background(), tc.params)
			require.ErrorIs(t, err, ErrInvalidData)
			assert.Contains(t, FieldErrors(err), tc.field)
			assert.Zero(t, f.store.callCount())
		})
	}

	t.Run("limit bounds are inclusive", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		for _, limit := range []int{1, MaxPageLimit} {
			_, err := f.app.ListProfiles(context.Background(), ListProfilesParams{Limit: ptr(limit)})
			assert.NoError(t, err)
		}
	})
}
