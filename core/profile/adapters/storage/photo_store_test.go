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

package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"foundermatch/core/profile/domain"
	"foundermatch/modules/objectstore"
	"foundermatch/modules/principal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	put     map[string][]byte
	removed []string
	err     error
}

func (f *fakeObjects) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.put == nil {
		f.put = map[string][]byte{}
	}
	f.put[key] = data
	return objectstore.PublicURL("http://localhost:9000", "profile-photos", key), nil
}

func (f *fakeObjects) Remove(_ context.Context, key string) error {
	if f.err != nil {
		return f.err
	}
	f.removed = append(f.removed, key)
	return nil
}

func (f *fakeObjects) KeyFromURL(publicURL string) (string, bool) {
	return objectstore.KeyFromURL("profile-photos", publicURL)
}

func TestPhotoStore(t *testing.T) {
	t.Parallel()

	t.Run("put then remove by url", func(t *testing.T) {
		t.Parallel()
		objs := &fakeObjects{}
		store := NewPhotoStore(objs)

		url, err := store.PutPhoto(context.Background(), "u1/1-a.png", []byte{1, 2}, "image/png")
		require.NoError(t, err)
		require.NoError(t, store.RemovePhoto(context.Background(), "u1", url))
		assert.Equal(t, []string{"u1/1-a.png"}, objs.removed)
	})

	t.Run("foreign url is ignored", func(t *testing.T) {
		t.Parallel()
		objs := &fakeObjects{}
		store := NewPhotoStore(objs)
		require.NoError(t, store.RemovePhoto(context.Background(), "u1", "https://images.example.com/ann.png"))
		assert.Empty(t, objs.removed)
	})

	t.Run("storage errors propagate", func(t *testing.T) {
		t.Parallel()
		objs := &fakeObjects{err: errors.New("s3 down")}
		store := NewPhotoStore(objs)
		_, err := store.PutPhoto(context.Background(), "u1/1-a.png", []byte{1}, "image/png")
		assert.Error(t, err)
		assert.Error(t, store.RemovePhoto(context.Background(), "u1", "http://localhost:9000/profile-photos/u1/1-a.png"))
	})
}

func TestPhotoStoreOwnerNamespace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		owner   string
		url     string
		removed []string
	}{
		{
			name:    "own object",
			owner:   "u2",
			url:     "http://localhost:9000/profile-photos/u2/1700000000000-abcd1234.png",
			removed: []string{"u2/1700000000000-abcd1234.png"},
		},
		{
			name:  "another owner's object",
			owner: "u2",
			url:   "http://localhost:9000/profile-photos/u1/1700000000000-abcd1234.png",
		},
		{
			name:  "owner id as a name prefix",
			owner: "u1",
			url:   "http://localhost:9000/profile-photos/u10/1700000000000-abcd1234.png",
		},
		{
			name:  "dot segments escaping the namespace",
			owner: "u2",
			url:   "http://localhost:9000/profile-photos/u2/../u1/1700000000000-abcd1234.png",
		},
		{
			name:  "other host pointing into the bucket",
			owner: "u2",
			url:   "https://evil.example.com/profile-photos/u1/1700000000000-abcd1234.png",
		},
		{
			name:  "no owner",
			owner: "",
			url:   "http://localhost:9000/profile-photos/u1/1700000000000-abcd1234.png",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			objs := &fakeObjects{}
			store := NewPhotoStore(objs)
			require.NoError(t, store.RemovePhoto(context.Background(), tt.owner, tt.url))
			assert.Equal(t, tt.removed, objs.removed)
		})
	}
}

func TestCrossOwnerPhotoSurvivesProfileDeletion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	objs := &fakeObjects{}
	store := NewPhotoStore(objs)
	victimURL, err := store.PutPhoto(ctx, "u1/1700000000000-abcd1234.png", []byte{1}, "image/png")
	require.NoError(t, err)

	profiles := &singleProfile{}
	app := domain.NewApp(profiles, profiles, store)
	u2 := &principal.Principal{ID: "u2"}

	in := domain.UpsertProfileInput{
		OwnerID:        "u2",
		Name:           "Mallory",
		Occupation:     domain.OccupationStudent,
		TimeCommitment: domain.TimeCommitmentExploring,
		PhotoURL:       &victimURL,
	}
	err = app.UpsertProfile(ctx, u2, in)
	require.ErrorIs(t, err, domain.ErrInvalidData)
	assert.Contains(t, domain.FieldErrors(err), "photo_url")

	// a row that already carries the foreign URL, e.g. written before the check existed
	profiles.row = &domain.Profile{OwnerID: "u2", Name: "Mallory", PhotoURL: &victimURL}
	require.NoError(t, app.DeleteProfile(ctx, u2, "u2"))

	assert.Empty(t, objs.removed)
	assert.Contains(t, objs.put, "u1/1700000000000-abcd1234.png")
}

// singleProfile stores at most one profile and satisfies both store ports.
type singleProfile struct {
	row *domain.Profile
}

func (s *singleProfile) GetProfileByOwner(_ context.Context, ownerID string) (*domain.Profile, error) {
	if s.row == nil || s.row.OwnerID != ownerID {
		return nil, domain.ErrProfileNotFound
	}
	cp := *s.row
	return &cp, nil
}

func (s *singleProfile) ListProfilesByOffset(context.Context, int, int) ([]domain.Profile, int, error) {
	return nil, 0, nil
}

func (s *singleProfile) UpsertProfile(_ context.Context, p *domain.UpsertProfileParams) (*domain.Profile, error) {
	s.row = &domain.Profile{OwnerID: p.OwnerID, Name: p.Name, PhotoURL: p.PhotoURL}
	cp := *s.row
	return &cp, nil
}

func (s *singleProfile) TouchLastActive(context.Context, string, time.Time) error { return nil }

func (s *singleProfile) DeleteProfile(context.Context, string) error {
	s.row = nil
	return nil
}
